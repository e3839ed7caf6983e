package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/quill-notes/internal/domain"
	"github.com/prn-tf/quill-notes/internal/repository"
)

// noteRepository implements repository.NoteRepository for PostgreSQL.
type noteRepository struct {
	db *DB
}

// NewNoteRepository creates a new PostgreSQL note repository.
func NewNoteRepository(db *DB) repository.NoteRepository {
	return &noteRepository{db: db}
}

const noteColumns = `id, user_id, title, text, completed, created_at, updated_at`

// Create inserts a new note and assigns its ID.
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}

	query := `
		INSERT INTO notes (id, user_id, title, text, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		note.ID,
		note.UserID,
		note.Title,
		note.Text,
		note.Completed,
		note.CreatedAt,
		note.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateTitle, note.Title)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrUserNotFound, note.UserID)
		}
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

// GetByID retrieves a note by ID.
func (r *noteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1`

	note, err := scanNote(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note by ID: %w", err)
	}
	return note, nil
}

// Update overwrites an existing note.
func (r *noteRepository) Update(ctx context.Context, note *domain.Note) error {
	note.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE notes
		SET user_id = $1, title = $2, text = $3, completed = $4, updated_at = $5
		WHERE id = $6
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		note.UserID,
		note.Title,
		note.Text,
		note.Completed,
		note.UpdatedAt,
		note.ID,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateTitle, note.Title)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrUserNotFound, note.UserID)
		}
		return fmt.Errorf("failed to update note: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}

	return nil
}

// DeleteReturning atomically deletes a note by ID and returns its former
// contents.
func (r *noteRepository) DeleteReturning(ctx context.Context, id string) (*domain.Note, error) {
	query := `DELETE FROM notes WHERE id = $1 RETURNING ` + noteColumns

	note, err := scanNote(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to delete note: %w", err)
	}
	return note, nil
}

// ListWithOwners returns all notes joined with the owning user's username.
// A single JOIN replaces the per-note owner lookup.
func (r *noteRepository) ListWithOwners(ctx context.Context) ([]*domain.NoteWithOwner, error) {
	query := `
		SELECT n.id, n.user_id, n.title, n.text, n.completed, n.created_at, n.updated_at, u.username
		FROM notes n
		JOIN users u ON u.id = n.user_id
		ORDER BY n.created_at
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*domain.NoteWithOwner
	for rows.Next() {
		n := &domain.NoteWithOwner{}
		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Title,
			&n.Text,
			&n.Completed,
			&n.CreatedAt,
			&n.UpdatedAt,
			&n.Username,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	return notes, nil
}

// ExistsByTitle checks for a collated title match, optionally excluding
// one ID.
func (r *noteRepository) ExistsByTitle(ctx context.Context, title, excludeID string) (bool, error) {
	var count int
	var err error
	if excludeID == "" {
		err = r.db.Pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM notes WHERE lower(title) = lower($1)`, title).Scan(&count)
	} else {
		err = r.db.Pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM notes WHERE lower(title) = lower($1) AND id != $2`, title, excludeID).Scan(&count)
	}
	if err != nil {
		return false, fmt.Errorf("failed to check title existence: %w", err)
	}
	return count > 0, nil
}

// scanNote scans a single note row.
func scanNote(row pgx.Row) (*domain.Note, error) {
	note := &domain.Note{}
	err := row.Scan(
		&note.ID,
		&note.UserID,
		&note.Title,
		&note.Text,
		&note.Completed,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return note, nil
}

// Ensure noteRepository implements repository.NoteRepository.
var _ repository.NoteRepository = (*noteRepository)(nil)
