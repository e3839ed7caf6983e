package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/quill-notes/internal/auth"
	"github.com/prn-tf/quill-notes/internal/domain"
	"github.com/prn-tf/quill-notes/internal/service"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	userService  *service.UserService
	tokenService *auth.TokenService
	logger       zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService *service.UserService, tokenService *auth.TokenService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		tokenService: tokenService,
		logger:       logger.With().Str("handler", "auth").Logger(),
	}
}

// RegisterPublicRoutes registers the routes reachable without a token.
func (h *AuthHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
}

// RegisterProtectedRoutes registers the routes behind the auth middleware.
func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/auth/logout", h.handleLogout)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil || req.Username == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUserInactive):
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		default:
			h.logger.Error().Err(err).Msg("login failed")
			writeMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	token, err := h.tokenService.Issue(user)
	if err != nil {
		h.logger.Error().Err(err).Str("username", user.Username).Msg("failed to issue token")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.tokenService.Revoke(r.Context(), identity.Claims); err != nil {
		h.logger.Error().Err(err).Str("user_id", identity.UserID).Msg("failed to revoke token")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeMessage(w, http.StatusOK, "Logged out")
}
