package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/quill-notes/internal/domain"
)

// mockNoteRepo is a map-backed NoteRepository with the same
// case-insensitive and referential semantics as the real stores.
type mockNoteRepo struct {
	notes     map[string]*domain.Note
	owners    map[string]string // user ID -> username
	err       error
	createErr error
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{
		notes:  make(map[string]*domain.Note),
		owners: make(map[string]string),
	}
}

func (m *mockNoteRepo) Create(ctx context.Context, note *domain.Note) error {
	if m.err != nil {
		return m.err
	}
	if m.createErr != nil {
		return m.createErr
	}
	for _, n := range m.notes {
		if strings.EqualFold(n.Title, note.Title) {
			return domain.ErrDuplicateTitle
		}
	}
	if _, ok := m.owners[note.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	note.ID = uuid.NewString()
	cp := *note
	m.notes[note.ID] = &cp
	return nil
}

func (m *mockNoteRepo) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	if m.err != nil {
		return nil, m.err
	}
	n, ok := m.notes[id]
	if !ok {
		return nil, domain.ErrNoteNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *mockNoteRepo) Update(ctx context.Context, note *domain.Note) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.notes[note.ID]; !ok {
		return domain.ErrNoteNotFound
	}
	for id, n := range m.notes {
		if id != note.ID && strings.EqualFold(n.Title, note.Title) {
			return domain.ErrDuplicateTitle
		}
	}
	if _, ok := m.owners[note.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *note
	m.notes[note.ID] = &cp
	return nil
}

func (m *mockNoteRepo) DeleteReturning(ctx context.Context, id string) (*domain.Note, error) {
	if m.err != nil {
		return nil, m.err
	}
	n, ok := m.notes[id]
	if !ok {
		return nil, domain.ErrNoteNotFound
	}
	delete(m.notes, id)
	return n, nil
}

func (m *mockNoteRepo) ListWithOwners(ctx context.Context) ([]*domain.NoteWithOwner, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.NoteWithOwner
	for _, n := range m.notes {
		out = append(out, &domain.NoteWithOwner{Note: *n, Username: m.owners[n.UserID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *mockNoteRepo) ExistsByTitle(ctx context.Context, title, excludeID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for id, n := range m.notes {
		if id != excludeID && strings.EqualFold(n.Title, title) {
			return true, nil
		}
	}
	return false, nil
}

func newTestNoteService(repo *mockNoteRepo) *NoteService {
	return NewNoteService(repo, zerolog.Nop())
}

// seedNote inserts a note directly into the mock store, registering the
// owner if unknown.
func seedNote(t *testing.T, repo *mockNoteRepo, userID, title, text string) *domain.Note {
	t.Helper()
	if _, ok := repo.owners[userID]; !ok {
		repo.owners[userID] = "owner-" + userID[:8]
	}
	note := domain.NewNote(userID, title, text)
	require.NoError(t, repo.Create(context.Background(), note))
	return note
}

func TestNoteService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := newMockNoteRepo()
		svc := newTestNoteService(repo)
		ownerID := uuid.NewString()
		repo.owners[ownerID] = "alice"

		note, err := svc.Create(ctx, CreateNoteInput{UserID: ownerID, Title: "Buy milk", Text: "2 liters"})
		require.NoError(t, err)

		assert.NotEmpty(t, note.ID)
		assert.Equal(t, ownerID, note.UserID)
		assert.Equal(t, "Buy milk", note.Title)
		assert.Equal(t, "2 liters", note.Text)
		assert.False(t, note.Completed, "new notes start incomplete")
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := newTestNoteService(newMockNoteRepo())

		for _, input := range []CreateNoteInput{
			{Title: "t", Text: "x"},
			{UserID: "u", Text: "x"},
			{UserID: "u", Title: "t"},
		} {
			_, err := svc.Create(ctx, input)
			assert.ErrorIs(t, err, ErrMissingFields)
		}
	})

	t.Run("duplicate title is case-insensitive", func(t *testing.T) {
		repo := newMockNoteRepo()
		svc := newTestNoteService(repo)
		ownerID := uuid.NewString()
		seedNote(t, repo, ownerID, "Buy milk", "2 liters")

		_, err := svc.Create(ctx, CreateNoteInput{UserID: ownerID, Title: "BUY MILK", Text: "again"})
		assert.ErrorIs(t, err, domain.ErrDuplicateTitle)
		assert.Len(t, repo.notes, 1, "store must be unchanged after a rejected create")
	})

	t.Run("unknown owner surfaces as invalid data", func(t *testing.T) {
		repo := newMockNoteRepo()
		svc := newTestNoteService(repo)

		_, err := svc.Create(ctx, CreateNoteInput{UserID: uuid.NewString(), Title: "t", Text: "x"})
		assert.ErrorIs(t, err, ErrInvalidNoteData)
	})

	t.Run("store rejection surfaces as invalid data", func(t *testing.T) {
		repo := newMockNoteRepo()
		svc := newTestNoteService(repo)
		ownerID := uuid.NewString()
		repo.owners[ownerID] = "alice"
		repo.createErr = errors.New("insert rejected")

		_, err := svc.Create(ctx, CreateNoteInput{UserID: ownerID, Title: "t", Text: "x"})
		assert.ErrorIs(t, err, ErrInvalidNoteData)
	})
}

func TestNoteService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("full replace", func(t *testing.T) {
		repo := newMockNoteRepo()
		svc := newTestNoteService(repo)
		ownerID := uuid.NewString()
		seeded := seedNote(t, repo, ownerID, "Buy milk", "2 liters")

		updated, err := svc.Update(ctx, UpdateNoteInput{
			ID:        seeded.ID,
			UserID:    ownerID,
			Title:     "Buy oat milk",
			Text:      "1 liter",
			Completed: true,
		})
		require.NoError(t, err)

		assert.Equal(t, "Buy oat milk", updated.Title)
		assert.Equal(t, "1 liter", updated.Text)
		assert.True(t, updated.Completed)

		stored := repo.notes[seeded.ID]
		assert.Equal(t, "Buy oat milk", stored.Title)
	})

	t.Run("own title is not a collision", func(t *testing.T) {
		repo := newMockNoteRepo()
		svc := newTestNoteService(repo)
		ownerID := uuid.NewString()
		seeded := seedNote(t, repo, ownerID, "Buy milk", "2 liters")

		_, err := svc.Update(ctx, UpdateNoteInput{
			ID:     seeded.ID,
			UserID: ownerID,
			Title:  "BUY MILK",
			Text:   "2 liters",
		})
		require.NoError(t, err)
	})

	t.Run("another note's title is", func(t *testing.T) {
		repo := newMockNoteRepo()
		svc := newTestNoteService(repo)
		ownerID := uuid.NewString()
		seedNote(t, repo, ownerID, "Buy milk", "2 liters")
		other := seedNote(t, repo, ownerID, "Walk dog", "around the block")

		_, err := svc.Update(ctx, UpdateNoteInput{
			ID:     other.ID,
			UserID: ownerID,
			Title:  "buy MILK",
			Text:   "no",
		})
		assert.ErrorIs(t, err, domain.ErrDuplicateTitle)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := newTestNoteService(newMockNoteRepo())
		_, err := svc.Update(ctx, UpdateNoteInput{ID: "x", Title: "t"})
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("not found", func(t *testing.T) {
		svc := newTestNoteService(newMockNoteRepo())
		_, err := svc.Update(ctx, UpdateNoteInput{
			ID:     uuid.NewString(),
			UserID: uuid.NewString(),
			Title:  "t",
			Text:   "x",
		})
		assert.ErrorIs(t, err, domain.ErrNoteNotFound)
	})
}

func TestNoteService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success returns former note", func(t *testing.T) {
		repo := newMockNoteRepo()
		svc := newTestNoteService(repo)
		seeded := seedNote(t, repo, uuid.NewString(), "Buy milk", "2 liters")

		deleted, err := svc.Delete(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, deleted.ID)
		assert.Equal(t, "Buy milk", deleted.Title)
		assert.Empty(t, repo.notes)
	})

	t.Run("missing id", func(t *testing.T) {
		svc := newTestNoteService(newMockNoteRepo())
		_, err := svc.Delete(ctx, "")
		assert.ErrorIs(t, err, ErrMissingID)
	})

	t.Run("not found", func(t *testing.T) {
		svc := newTestNoteService(newMockNoteRepo())
		_, err := svc.Delete(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrNoteNotFound)
	})
}

func TestNoteService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		svc := newTestNoteService(newMockNoteRepo())
		notes, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, notes)
	})

	t.Run("notes carry owner usernames", func(t *testing.T) {
		repo := newMockNoteRepo()
		svc := newTestNoteService(repo)
		ownerID := uuid.NewString()
		repo.owners[ownerID] = "alice"
		seedNote(t, repo, ownerID, "Buy milk", "2 liters")

		notes, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, "Buy milk", notes[0].Title)
		assert.Equal(t, "alice", notes[0].Username)
	})
}
