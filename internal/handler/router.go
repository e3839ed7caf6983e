package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RouterConfig contains the dependencies for the router.
type RouterConfig struct {
	NoteHandler    *NoteHandler
	UserHandler    *UserHandler
	AuthHandler    *AuthHandler
	AuthMiddleware func(http.Handler) http.Handler
	Middlewares    []func(http.Handler) http.Handler
	Logger         zerolog.Logger
}

// NewRouter builds the HTTP router. The note and user resource groups
// sit uniformly behind the auth middleware; health and login do not.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	for _, mw := range cfg.Middlewares {
		r.Use(mw)
	}

	r.Get("/health", handleHealth)
	cfg.AuthHandler.RegisterPublicRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(cfg.AuthMiddleware)
		cfg.AuthHandler.RegisterProtectedRoutes(r)
		cfg.NoteHandler.RegisterRoutes(r)
		cfg.UserHandler.RegisterRoutes(r)
	})

	return r
}

// handleHealth handles health check requests.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
