package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/quill-notes/internal/domain"
	"github.com/prn-tf/quill-notes/internal/service"
)

// UserHandler handles user CRUD requests.
type UserHandler struct {
	userService *service.UserService
	logger      zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger.With().Str("handler", "user").Logger(),
	}
}

// RegisterRoutes registers user routes. IDs travel in the request body
// for PATCH and DELETE, matching the note routes.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.handleList)
	r.Post("/users", h.handleCreate)
	r.Patch("/users", h.handleUpdate)
	r.Delete("/users", h.handleDelete)
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list users failed")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// An empty collection is a successful read, not an error.
	// The password hash is excluded by domain.User's JSON mapping.
	if users == nil {
		users = []*domain.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

type createUserRequest struct {
	Username string        `json:"username"`
	Password string        `json:"password"`
	Roles    []domain.Role `json:"roles"`
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	user, err := h.userService.Create(r.Context(), service.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			writeMessage(w, http.StatusBadRequest, "All fields are required")
		case errors.Is(err, domain.ErrInvalidRole):
			writeMessage(w, http.StatusBadRequest, "Invalid role")
		case errors.Is(err, domain.ErrDuplicateUsername):
			writeMessage(w, http.StatusConflict, "Duplicate username")
		case errors.Is(err, service.ErrInvalidUserData):
			writeMessage(w, http.StatusBadRequest, "Invalid user data received")
		default:
			h.logger.Error().Err(err).Msg("create user failed")
			writeMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeMessage(w, http.StatusCreated, fmt.Sprintf("New user %s created.", user.Username))
}

type updateUserRequest struct {
	ID       string        `json:"id"`
	Username string        `json:"username"`
	Roles    []domain.Role `json:"roles"`
	Active   *bool         `json:"active"`
	Password string        `json:"password"`
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	// active must be supplied explicitly as a boolean.
	if req.Active == nil {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	user, err := h.userService.Update(r.Context(), service.UpdateUserInput{
		ID:       req.ID,
		Username: req.Username,
		Roles:    req.Roles,
		Active:   *req.Active,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			writeMessage(w, http.StatusBadRequest, "All fields are required")
		case errors.Is(err, domain.ErrInvalidRole):
			writeMessage(w, http.StatusBadRequest, "Invalid role")
		case errors.Is(err, domain.ErrUserNotFound):
			writeMessage(w, http.StatusBadRequest, "User not found")
		case errors.Is(err, domain.ErrDuplicateUsername):
			writeMessage(w, http.StatusConflict, "Duplicate username")
		default:
			h.logger.Error().Err(err).Msg("update user failed")
			writeMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeMessage(w, http.StatusOK, fmt.Sprintf("%s updated", user.Username))
}

type deleteUserRequest struct {
	ID string `json:"id"`
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "User ID Required")
		return
	}

	user, err := h.userService.Delete(r.Context(), req.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingID):
			writeMessage(w, http.StatusBadRequest, "User ID Required")
		case errors.Is(err, domain.ErrUserHasNotes):
			writeMessage(w, http.StatusBadRequest, "User has assigned notes")
		case errors.Is(err, domain.ErrUserNotFound):
			writeMessage(w, http.StatusBadRequest, "User not found")
		default:
			h.logger.Error().Err(err).Msg("delete user failed")
			writeMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, fmt.Sprintf("Username %s with ID %s deleted", user.Username, user.ID))
}
