package domain

import (
	"time"
)

// Note represents a single note owned by a user.
type Note struct {
	// ID is the unique identifier for the note, assigned by the store
	// on creation and immutable afterwards.
	ID string `json:"id"`

	// UserID references the owning user's ID. A note belongs to exactly
	// one user. The reference is checked at write time; there is no
	// cascading propagation from user to note beyond the deletion guard.
	UserID string `json:"user"`

	// Title is unique under case-insensitive comparison.
	Title string `json:"title"`

	// Text is the free-form body of the note.
	Text string `json:"text"`

	// Completed marks the note as done. Defaults to false on creation.
	Completed bool `json:"completed"`

	// CreatedAt is the timestamp when the note was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the note was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewNote creates a new Note with default values. The ID is assigned by
// the repository on insert.
func NewNote(userID, title, text string) *Note {
	now := time.Now().UTC()
	return &Note{
		UserID:    userID,
		Title:     title,
		Text:      text,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NoteWithOwner is a Note carrying the owning user's username, as
// returned by list operations.
type NoteWithOwner struct {
	Note
	Username string `json:"username"`
}
