// Package service provides business logic services for Quill Notes.
package service

import "errors"

// Common service errors. Business rule violations (not found, duplicates,
// delete guard) are the domain package's sentinels; these cover request
// validation and infrastructure failures.
var (
	// ErrMissingFields indicates a required field is absent or empty.
	ErrMissingFields = errors.New("all fields are required")

	// ErrMissingID indicates the entity ID was not supplied.
	ErrMissingID = errors.New("id is required")

	// ErrInvalidNoteData indicates the store rejected a note write for
	// reasons not caught by validation.
	ErrInvalidNoteData = errors.New("invalid note data received")

	// ErrInvalidUserData indicates the store rejected a user write for
	// reasons not caught by validation.
	ErrInvalidUserData = errors.New("invalid user data received")

	// ErrInternalError covers unexpected infrastructure failures.
	ErrInternalError = errors.New("internal server error")
)
