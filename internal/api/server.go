// Package api exposes the workhorse operations over HTTP.
//
// Every response uses the same envelope. Failures carry the error kind, a
// message and an optional suggested action, and the status code is derived
// from the kind.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/CoderDKai/workhorse/internal/config"
	"github.com/CoderDKai/workhorse/internal/constants"
	"github.com/CoderDKai/workhorse/internal/domain"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/repository"
	"github.com/CoderDKai/workhorse/internal/workspace"
)

// RepositoryService registers and resolves managed repositories.
type RepositoryService interface {
	Add(ctx context.Context, req repository.AddRequest) (*domain.RepositoryRecord, error)
	List(ctx context.Context) ([]*domain.RepositoryRecord, error)
	Resolve(ctx context.Context, ref string) (*domain.RepositoryRecord, error)
	Remove(ctx context.Context, id string, purge bool) error
}

// ScriptEngine runs script executions.
type ScriptEngine interface {
	CreateExecution(ctx context.Context, content, dir string, env map[string]string) (*domain.ScriptExecution, error)
	Execute(ctx context.Context, id string) (*domain.ExecutionResult, error)
	Cancel(ctx context.Context, id string) (*domain.ScriptExecution, error)
	Get(ctx context.Context, id string) (*domain.ScriptExecution, error)
	List(ctx context.Context) ([]*domain.ScriptExecution, error)
	CleanupCompleted(ctx context.Context, keep int) (int, error)
}

// TerminalManager drives terminal sessions.
type TerminalManager interface {
	Create(ctx context.Context, name, dir string, env map[string]string) (*domain.TerminalSession, error)
	Start(ctx context.Context, id string) (*domain.TerminalSession, error)
	SendCommand(ctx context.Context, id, text string) error
	ExecuteCommand(ctx context.Context, spec domain.CommandSpec) (*domain.TerminalOutput, error)
	Output(ctx context.Context, id string) ([]domain.TerminalOutput, error)
	History(ctx context.Context, id string) ([]domain.TerminalOutput, error)
	Close(ctx context.Context, id string) (*domain.TerminalSession, error)
	CleanupClosed(ctx context.Context) (int, error)
	Rename(ctx context.Context, id, name string) (*domain.TerminalSession, error)
	Get(ctx context.Context, id string) (*domain.TerminalSession, error)
	List(ctx context.Context) ([]*domain.TerminalSession, error)
}

// Services bundles the operation backends served by the API.
type Services struct {
	Repositories RepositoryService
	Workspaces   workspace.Manager
	Scripts      ScriptEngine
	Terminals    TerminalManager
}

// Server is the HTTP API server.
type Server struct {
	cfg       config.ServerConfig
	svc       Services
	server    *http.Server
	startedAt time.Time
}

// New creates a Server. Zero timeouts fall back to defaults.
func New(cfg config.ServerConfig, svc Services) *Server {
	if cfg.Listen == "" {
		cfg.Listen = constants.DefaultListenAddr
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = constants.DefaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = constants.DefaultWriteTimeout
	}
	return &Server{
		cfg:       cfg,
		svc:       svc,
		startedAt: time.Now(),
	}
}

// Start serves on the configured address until ctx is done, then shuts
// down gracefully. It returns ctx.Err() after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on '%s': %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().Str("listen", ln.Addr().String()).Msg("API server starting")

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.ShutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

// Handler returns the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", s.handleHealthz)

		r.Route("/repositories", func(r chi.Router) {
			r.Post("/", s.handleAddRepository)
			r.Get("/", s.handleListRepositories)
			r.Delete("/{repoID}", s.handleRemoveRepository)
		})

		r.Route("/workspaces", func(r chi.Router) {
			r.Use(s.requireRepo)
			r.Post("/", s.handleCreateWorkspace)
			r.Get("/", s.handleListWorkspaces)
			r.Get("/stats", s.handleWorkspaceStats)
			r.Post("/cleanup", s.handleCleanupWorkspaces)
			r.Post("/reconcile", s.handleReconcileAll)
			r.Post("/index", s.handleRebuildIndex)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetWorkspace)
				r.Delete("/", s.handleDeleteWorkspace)
				r.Post("/archive", s.handleArchiveWorkspace)
				r.Post("/restore", s.handleRestoreWorkspace)
				r.Post("/reconcile", s.handleReconcileWorkspace)
				r.Post("/access", s.handleAccessWorkspace)
				r.Put("/tags/{tag}", s.handleAddTag)
				r.Delete("/tags/{tag}", s.handleRemoveTag)
				r.Put("/fields/{key}", s.handleSetField)
				r.Delete("/fields/{key}", s.handleRemoveField)
			})
		})

		r.Route("/scripts", func(r chi.Router) {
			r.Post("/", s.handleCreateExecution)
			r.Get("/", s.handleListExecutions)
			r.Post("/cleanup", s.handleCleanupExecutions)
			r.Get("/{id}", s.handleGetExecution)
			r.Post("/{id}/execute", s.handleExecute)
			r.Post("/{id}/cancel", s.handleCancelExecution)
		})

		r.Route("/terminals", func(r chi.Router) {
			r.Post("/", s.handleCreateTerminal)
			r.Get("/", s.handleListTerminals)
			r.Post("/exec", s.handleExecuteCommand)
			r.Post("/cleanup", s.handleCleanupTerminals)
			r.Get("/{id}", s.handleGetTerminal)
			r.Patch("/{id}", s.handleRenameTerminal)
			r.Post("/{id}/start", s.handleStartTerminal)
			r.Post("/{id}/close", s.handleCloseTerminal)
			r.Post("/{id}/input", s.handleSendCommand)
			r.Get("/{id}/output", s.handleTerminalOutput)
			r.Get("/{id}/history", s.handleTerminalHistory)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusNotFound, envelope{Error: &whErrors.Failure{Kind: whErrors.KindNotFound, Message: "route not found"}})
	})

	return r
}

// loggingMiddleware logs each request once it completed.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
	})
}
