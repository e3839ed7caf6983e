// Package main is the entry point for the Quill Notes API server.
// Quill Notes is a JWT-gated REST backend for users and their notes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prn-tf/quill-notes/internal/auth"
	memorycache "github.com/prn-tf/quill-notes/internal/cache/memory"
	rediscache "github.com/prn-tf/quill-notes/internal/cache/redis"
	"github.com/prn-tf/quill-notes/internal/config"
	"github.com/prn-tf/quill-notes/internal/handler"
	"github.com/prn-tf/quill-notes/internal/metrics"
	"github.com/prn-tf/quill-notes/internal/repository"
	"github.com/prn-tf/quill-notes/internal/repository/postgres"
	"github.com/prn-tf/quill-notes/internal/repository/sqlite"
	"github.com/prn-tf/quill-notes/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting Quill Notes server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// Store
	userRepo, noteRepo, dbHealth, err := newRepositories(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer dbHealth.Close()

	// Token denylist backend
	var denylist repository.Cache
	if cfg.Redis.Enabled {
		redisCache, err := rediscache.NewCache(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisCache.Close()
		denylist = redisCache
	} else {
		memCache := memorycache.NewCache()
		defer memCache.Stop()
		denylist = memCache
	}

	// Services
	userService := service.NewUserService(userRepo, cfg.Auth.BcryptCost, logger)
	noteService := service.NewNoteService(noteRepo, logger)
	tokenService := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, denylist, logger)

	// HTTP surface
	var middlewares []func(http.Handler) http.Handler
	if cfg.Metrics.Enabled {
		m := metrics.New()
		middlewares = append(middlewares, m.Middleware)
		go serveMetrics(ctx, cfg.Metrics, m, logger)
	}

	router := handler.NewRouter(handler.RouterConfig{
		NoteHandler:    handler.NewNoteHandler(noteService, logger),
		UserHandler:    handler.NewUserHandler(userService, logger),
		AuthHandler:    handler.NewAuthHandler(userService, tokenService, logger),
		AuthMiddleware: auth.Middleware(tokenService, logger),
		Middlewares:    middlewares,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      http.MaxBytesHandler(router, cfg.Server.MaxBodySize),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

// newRepositories builds the configured store backend and runs its
// migrations.
func newRepositories(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (repository.UserRepository, repository.NoteRepository, repository.DatabaseHealth, error) {
	switch cfg.Driver {
	case "sqlite":
		sqliteCfg := sqlite.DefaultConfig(cfg.Path)
		sqliteCfg.JournalMode = cfg.JournalMode
		sqliteCfg.BusyTimeout = cfg.BusyTimeout
		sqliteCfg.SynchronousMode = cfg.SynchronousMode

		db, err := sqlite.NewDB(ctx, sqliteCfg, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("failed to migrate sqlite store: %w", err)
		}
		return sqlite.NewUserRepository(db), sqlite.NewNoteRepository(db), db, nil

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("failed to migrate postgres store: %w", err)
		}
		return postgres.NewUserRepository(db), postgres.NewNoteRepository(db), db, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}
}

// serveMetrics runs the Prometheus endpoint on its own port.
func serveMetrics(ctx context.Context, cfg config.MetricsConfig, m *metrics.Metrics, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, m.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info().Int("port", cfg.Port).Str("path", cfg.Path).Msg("metrics server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

// newLogger builds the root logger from configuration.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = cfg.TimeFormat

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}

	if cfg.Format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
