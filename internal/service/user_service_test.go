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
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/quill-notes/internal/domain"
)

// mockUserRepo is a map-backed UserRepository with the same
// case-insensitive semantics as the real stores.
type mockUserRepo struct {
	users     map[string]*domain.User
	hasNotes  map[string]bool
	err       error
	createErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:    make(map[string]*domain.User),
		hasNotes: make(map[string]bool),
	}
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.err != nil {
		return m.err
	}
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Username, user.Username) {
			return domain.ErrDuplicateUsername
		}
	}
	user.ID = uuid.NewString()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, u := range m.users {
		if id != user.ID && strings.EqualFold(u.Username, user.Username) {
			return domain.ErrDuplicateUsername
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) DeleteReturning(ctx context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if m.hasNotes[id] {
		return nil, domain.ErrUserHasNotes
	}
	delete(m.users, id)
	return u, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.User
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for id, u := range m.users {
		if id != excludeID && strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func newTestUserService(repo *mockUserRepo) *UserService {
	return NewUserService(repo, bcrypt.MinCost, zerolog.Nop())
}

// seedUser inserts a user directly into the mock store.
func seedUser(t *testing.T, repo *mockUserRepo, username, password string, active bool) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := domain.NewUser(username, string(hash), nil)
	user.Active = active
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success with defaults", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newTestUserService(repo)

		user, err := svc.Create(ctx, CreateUserInput{Username: "alice", Password: "secret123"})
		require.NoError(t, err)

		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, []domain.Role{domain.RoleEmployee}, user.Roles)
		assert.True(t, user.Active)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
		assert.Len(t, repo.users, 1)
	})

	t.Run("explicit roles", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newTestUserService(repo)

		user, err := svc.Create(ctx, CreateUserInput{
			Username: "boss",
			Password: "secret123",
			Roles:    []domain.Role{domain.RoleManager, domain.RoleAdmin},
		})
		require.NoError(t, err)
		assert.Equal(t, []domain.Role{domain.RoleManager, domain.RoleAdmin}, user.Roles)
	})

	t.Run("missing fields", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newTestUserService(repo)

		_, err := svc.Create(ctx, CreateUserInput{Username: "alice"})
		assert.ErrorIs(t, err, ErrMissingFields)

		_, err = svc.Create(ctx, CreateUserInput{Password: "secret123"})
		assert.ErrorIs(t, err, ErrMissingFields)
		assert.Empty(t, repo.users)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newTestUserService(repo)

		_, err := svc.Create(ctx, CreateUserInput{
			Username: "alice",
			Password: "secret123",
			Roles:    []domain.Role{"wizard"},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRole)
		assert.Empty(t, repo.users)
	})

	t.Run("store rejection surfaces as invalid data", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newTestUserService(repo)
		repo.createErr = errors.New("insert rejected")

		_, err := svc.Create(ctx, CreateUserInput{Username: "alice", Password: "secret123"})
		assert.ErrorIs(t, err, ErrInvalidUserData)
	})

	t.Run("duplicate username is case-insensitive", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newTestUserService(repo)
		seedUser(t, repo, "alice", "secret123", true)

		_, err := svc.Create(ctx, CreateUserInput{Username: "ALICE", Password: "other"})
		assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
		assert.Len(t, repo.users, 1, "store must be unchanged after a rejected create")
	})
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("full replace without password keeps hash", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newTestUserService(repo)
		seeded := seedUser(t, repo, "alice", "secret123", true)

		updated, err := svc.Update(ctx, UpdateUserInput{
			ID:       seeded.ID,
			Username: "alice2",
			Roles:    []domain.Role{domain.RoleManager},
			Active:   false,
		})
		require.NoError(t, err)

		assert.Equal(t, "alice2", updated.Username)
		assert.Equal(t, []domain.Role{domain.RoleManager}, updated.Roles)
		assert.False(t, updated.Active)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("secret123")),
			"omitting the password must retain the stored credential")
	})

	t.Run("password change rehashes", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newTestUserService(repo)
		seeded := seedUser(t, repo, "alice", "secret123", true)

		updated, err := svc.Update(ctx, UpdateUserInput{
			ID:       seeded.ID,
			Username: "alice",
			Roles:    []domain.Role{domain.RoleEmployee},
			Active:   true,
			Password: "newpass456",
		})
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("newpass456")))
		assert.Error(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("secret123")))
	})

	t.Run("missing roles", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newTestUserService(repo)
		seeded := seedUser(t, repo, "alice", "secret123", true)

		_, err := svc.Update(ctx, UpdateUserInput{ID: seeded.ID, Username: "alice", Active: true})
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("not found", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newTestUserService(repo)

		_, err := svc.Update(ctx, UpdateUserInput{
			ID:       uuid.NewString(),
			Username: "ghost",
			Roles:    []domain.Role{domain.RoleEmployee},
		})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("duplicate username excludes self", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newTestUserService(repo)
		alice := seedUser(t, repo, "alice", "secret123", true)
		seedUser(t, repo, "bob", "secret123", true)

		// Re-asserting the own username is not a collision.
		_, err := svc.Update(ctx, UpdateUserInput{
			ID:       alice.ID,
			Username: "Alice",
			Roles:    []domain.Role{domain.RoleEmployee},
			Active:   true,
		})
		require.NoError(t, err)

		// Taking another user's name is.
		_, err = svc.Update(ctx, UpdateUserInput{
			ID:       alice.ID,
			Username: "BOB",
			Roles:    []domain.Role{domain.RoleEmployee},
			Active:   true,
		})
		assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success returns former user", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newTestUserService(repo)
		seeded := seedUser(t, repo, "alice", "secret123", true)

		deleted, err := svc.Delete(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, deleted.ID)
		assert.Equal(t, "alice", deleted.Username)
		assert.Empty(t, repo.users)
	})

	t.Run("guarded while notes exist", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newTestUserService(repo)
		seeded := seedUser(t, repo, "alice", "secret123", true)
		repo.hasNotes[seeded.ID] = true

		_, err := svc.Delete(ctx, seeded.ID)
		assert.ErrorIs(t, err, domain.ErrUserHasNotes)
		assert.Len(t, repo.users, 1, "guarded delete must leave the user in place")
	})

	t.Run("missing id", func(t *testing.T) {
		svc := newTestUserService(newMockUserRepo())
		_, err := svc.Delete(ctx, "")
		assert.ErrorIs(t, err, ErrMissingID)
	})

	t.Run("not found", func(t *testing.T) {
		svc := newTestUserService(newMockUserRepo())
		_, err := svc.Delete(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()

	repo := newMockUserRepo()
	svc := newTestUserService(repo)
	seedUser(t, repo, "alice", "secret123", true)
	seedUser(t, repo, "dormant", "secret123", false)

	t.Run("success", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "alice", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("username match is case-insensitive", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "ALICE", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "alice", "wrongpass")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody", "secret123")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "dormant", "secret123")
		assert.ErrorIs(t, err, domain.ErrUserInactive)
	})
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		svc := newTestUserService(newMockUserRepo())
		users, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("returns all users", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newTestUserService(repo)
		seedUser(t, repo, "alice", "secret123", true)
		seedUser(t, repo, "bob", "secret123", true)

		users, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "alice", users[0].Username)
		assert.Equal(t, "bob", users[1].Username)
	})
}
