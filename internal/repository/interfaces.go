// Package repository defines data access interfaces for Quill Notes.
// These interfaces abstract database operations, allowing for different
// implementations (SQLite, PostgreSQL, in-memory for testing) while
// keeping the service layer clean.
package repository

import (
	"context"

	"github.com/prn-tf/quill-notes/internal/domain"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create inserts a new user and assigns its ID.
	// Returns domain.ErrDuplicateUsername on a collated username collision.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername retrieves a user by username (case-insensitive match).
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Update overwrites an existing user.
	// Returns domain.ErrDuplicateUsername on a collated username collision.
	Update(ctx context.Context, user *domain.User) error

	// DeleteReturning atomically checks for owned notes and deletes the
	// user, returning its former contents. Returns domain.ErrUserHasNotes
	// if any note references the user, domain.ErrUserNotFound if absent.
	DeleteReturning(ctx context.Context, id string) (*domain.User, error)

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]*domain.User, error)

	// ExistsByUsername checks for a user with the given username under
	// case-insensitive comparison, optionally excluding one ID
	// (pass "" to exclude none).
	ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error)
}

// NoteRepository defines the interface for note data access.
type NoteRepository interface {
	// Create inserts a new note and assigns its ID.
	// Returns domain.ErrDuplicateTitle on a collated title collision.
	Create(ctx context.Context, note *domain.Note) error

	// GetByID retrieves a note by ID.
	GetByID(ctx context.Context, id string) (*domain.Note, error)

	// Update overwrites an existing note.
	// Returns domain.ErrDuplicateTitle on a collated title collision.
	Update(ctx context.Context, note *domain.Note) error

	// DeleteReturning atomically deletes a note by ID and returns its
	// former contents. Returns domain.ErrNoteNotFound if absent.
	DeleteReturning(ctx context.Context, id string) (*domain.Note, error)

	// ListWithOwners returns all notes joined with the owning user's
	// username, ordered by creation time.
	ListWithOwners(ctx context.Context) ([]*domain.NoteWithOwner, error)

	// ExistsByTitle checks for a note with the given title under
	// case-insensitive comparison, optionally excluding one ID
	// (pass "" to exclude none).
	ExistsByTitle(ctx context.Context, title, excludeID string) (bool, error)
}

// DatabaseHealth is an interface for database health checks.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Close() error
}
