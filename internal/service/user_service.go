package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/quill-notes/internal/domain"
	"github.com/prn-tf/quill-notes/internal/repository"
)

// UserService handles user management operations.
type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
	logger     zerolog.Logger
}

// NewUserService creates a new UserService. bcryptCost of 0 falls back
// to the default work factor of 10.
func NewUserService(userRepo repository.UserRepository, bcryptCost int, logger zerolog.Logger) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("service", "user").Logger(),
	}
}

// List returns all users. The password hash never leaves the service
// serialized (domain.User excludes it from JSON).
// An empty result is not an error.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return users, nil
}

// CreateUserInput contains the data needed to create a new user.
type CreateUserInput struct {
	Username string
	Password string
	Roles    []domain.Role
}

// Create creates a new user account. Roles default to the baseline role
// when omitted or empty; otherwise each supplied role must be from the
// known set.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if input.Username == "" || input.Password == "" {
		return nil, ErrMissingFields
	}
	if err := validateRoles(input.Roles, true); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username, "")
	if err != nil {
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to check username existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateUsername, input.Username)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	user := domain.NewUser(input.Username, string(passwordHash), input.Roles)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInvalidUserData, err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("user created")

	return user, nil
}

// UpdateUserInput contains the data needed to update a user.
// Updates are full replaces; Password is the single optional field and
// retains the stored credential when empty.
type UpdateUserInput struct {
	ID       string
	Username string
	Roles    []domain.Role
	Active   bool
	Password string
}

// Update overwrites an existing user. Roles must be non-empty and drawn
// from the known set.
func (s *UserService) Update(ctx context.Context, input UpdateUserInput) (*domain.User, error) {
	if input.ID == "" || input.Username == "" || len(input.Roles) == 0 {
		return nil, ErrMissingFields
	}
	if err := validateRoles(input.Roles, false); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("user_id", input.ID).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username, input.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to check username existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateUsername, input.Username)
	}

	user.Username = input.Username
	user.Roles = input.Roles
	user.Active = input.Active

	if input.Password != "" {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to hash password")
			return nil, fmt.Errorf("%w: failed to hash password", ErrInternalError)
		}
		user.PasswordHash = string(passwordHash)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to update user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user updated")
	return user, nil
}

// Delete removes a user by ID and returns its former contents.
// Fails with domain.ErrUserHasNotes while any note references the user;
// the check and the delete run in one store transaction.
func (s *UserService) Delete(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	user, err := s.userRepo.DeleteReturning(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserHasNotes) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to delete user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user deleted")
	return user, nil
}

// Authenticate verifies user credentials and returns the user.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		// Don't expose whether the username exists.
		s.logger.Debug().Str("username", username).Msg("user not found during authentication")
		return nil, domain.ErrInvalidCredentials
	}

	if !user.CanAuthenticate() {
		s.logger.Debug().Str("username", username).Msg("inactive user attempted authentication")
		return nil, domain.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug().Str("username", username).Msg("invalid password during authentication")
		return nil, domain.ErrInvalidCredentials
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("user authenticated")

	return user, nil
}

// validateRoles checks roles against the known role set.
// allowEmpty permits an empty list (creation defaults it).
func validateRoles(roles []domain.Role, allowEmpty bool) error {
	if len(roles) == 0 {
		if allowEmpty {
			return nil
		}
		return ErrMissingFields
	}
	for _, r := range roles {
		if !domain.ValidRole(r) {
			return fmt.Errorf("%w: %s", domain.ErrInvalidRole, r)
		}
	}
	return nil
}
