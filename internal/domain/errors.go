// Package domain contains the core business entities for Quill Notes.
package domain

import (
	"errors"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUsername indicates a user with the same username
	// already exists under case-insensitive comparison.
	ErrDuplicateUsername = errors.New("duplicate username")

	// ErrUserHasNotes indicates the user still owns notes and cannot
	// be deleted.
	ErrUserHasNotes = errors.New("user has assigned notes")

	// ErrUserInactive indicates the user account is disabled.
	ErrUserInactive = errors.New("user account is inactive")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoteNotFound indicates the requested note does not exist.
	ErrNoteNotFound = errors.New("note not found")

	// ErrDuplicateTitle indicates a note with the same title already
	// exists under case-insensitive comparison.
	ErrDuplicateTitle = errors.New("duplicate note title")

	// ErrInvalidRole indicates a role tag outside the known role set.
	ErrInvalidRole = errors.New("invalid role")
)
