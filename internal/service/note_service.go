package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/quill-notes/internal/domain"
	"github.com/prn-tf/quill-notes/internal/repository"
)

// NoteService handles note management operations.
type NoteService struct {
	noteRepo repository.NoteRepository
	logger   zerolog.Logger
}

// NewNoteService creates a new NoteService.
func NewNoteService(noteRepo repository.NoteRepository, logger zerolog.Logger) *NoteService {
	return &NoteService{
		noteRepo: noteRepo,
		logger:   logger.With().Str("service", "note").Logger(),
	}
}

// List returns all notes, each carrying the owner's username.
// An empty result is not an error.
func (s *NoteService) List(ctx context.Context) ([]*domain.NoteWithOwner, error) {
	notes, err := s.noteRepo.ListWithOwners(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list notes")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return notes, nil
}

// CreateNoteInput contains the data needed to create a new note.
type CreateNoteInput struct {
	UserID string
	Title  string
	Text   string
}

// Create creates a new note. The owner reference is trusted at this
// layer; a store-level foreign key rejection surfaces as invalid data.
func (s *NoteService) Create(ctx context.Context, input CreateNoteInput) (*domain.Note, error) {
	if input.UserID == "" || input.Title == "" || input.Text == "" {
		return nil, ErrMissingFields
	}

	// Fast-path duplicate check. The store's collated unique constraint
	// is the backstop for the window between this check and the insert.
	exists, err := s.noteRepo.ExistsByTitle(ctx, input.Title, "")
	if err != nil {
		s.logger.Error().Err(err).Str("title", input.Title).Msg("failed to check title existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateTitle, input.Title)
	}

	note := domain.NewNote(input.UserID, input.Title, input.Text)

	if err := s.noteRepo.Create(ctx, note); err != nil {
		if errors.Is(err, domain.ErrDuplicateTitle) {
			return nil, err
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown user %s", ErrInvalidNoteData, input.UserID)
		}
		s.logger.Error().Err(err).Str("title", input.Title).Msg("failed to create note")
		return nil, fmt.Errorf("%w: %v", ErrInvalidNoteData, err)
	}

	s.logger.Info().
		Str("note_id", note.ID).
		Str("user_id", note.UserID).
		Str("title", note.Title).
		Msg("note created")

	return note, nil
}

// UpdateNoteInput contains the data needed to update a note.
// Updates are full replaces; every field must be resupplied.
type UpdateNoteInput struct {
	ID        string
	UserID    string
	Title     string
	Text      string
	Completed bool
}

// Update overwrites all fields of an existing note.
func (s *NoteService) Update(ctx context.Context, input UpdateNoteInput) (*domain.Note, error) {
	if input.ID == "" || input.UserID == "" || input.Title == "" || input.Text == "" {
		return nil, ErrMissingFields
	}

	note, err := s.noteRepo.GetByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("note_id", input.ID).Msg("failed to get note")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	exists, err := s.noteRepo.ExistsByTitle(ctx, input.Title, input.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("title", input.Title).Msg("failed to check title existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateTitle, input.Title)
	}

	note.UserID = input.UserID
	note.Title = input.Title
	note.Text = input.Text
	note.Completed = input.Completed

	if err := s.noteRepo.Update(ctx, note); err != nil {
		if errors.Is(err, domain.ErrDuplicateTitle) || errors.Is(err, domain.ErrNoteNotFound) {
			return nil, err
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown user %s", ErrInvalidNoteData, input.UserID)
		}
		s.logger.Error().Err(err).Str("note_id", note.ID).Msg("failed to update note")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("note_id", note.ID).Str("title", note.Title).Msg("note updated")
	return note, nil
}

// Delete removes a note by ID and returns its former contents.
func (s *NoteService) Delete(ctx context.Context, id string) (*domain.Note, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	note, err := s.noteRepo.DeleteReturning(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("note_id", id).Msg("failed to delete note")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("note_id", note.ID).Str("title", note.Title).Msg("note deleted")
	return note, nil
}
