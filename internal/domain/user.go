// Package domain contains the core business entities for Quill Notes.
// These are pure Go structs with no external dependencies.
package domain

import (
	"time"
)

// Role is a user role tag. Roles form a closed set; unknown role strings
// are rejected at the service layer before they reach the store.
type Role string

const (
	// RoleEmployee is the baseline role assigned when none is supplied.
	RoleEmployee Role = "employee"

	// RoleManager can manage notes across users.
	RoleManager Role = "manager"

	// RoleAdmin can manage users.
	RoleAdmin Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered user in the system.
// Users own notes and authenticate with username/password.
type User struct {
	// ID is the unique identifier for the user, assigned by the store
	// on creation and immutable afterwards.
	ID string `json:"id"`

	// Username is unique under case-insensitive comparison.
	Username string `json:"username"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Never exposed in API responses.
	PasswordHash string `json:"-"`

	// Roles is the non-empty set of role tags for the user.
	Roles []Role `json:"roles"`

	// Active indicates whether the account may authenticate.
	Active bool `json:"active"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with default values. The ID is assigned by
// the repository on insert.
func NewUser(username, passwordHash string, roles []Role) *User {
	if len(roles) == 0 {
		roles = []Role{RoleEmployee}
	}
	now := time.Now().UTC()
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Roles:        roles,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CanAuthenticate returns true if the user is allowed to authenticate.
func (u *User) CanAuthenticate() bool {
	return u.Active
}
