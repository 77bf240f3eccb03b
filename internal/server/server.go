package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/huddlehq/huddle/internal/featureflag"
	"github.com/huddlehq/huddle/internal/handler"
	"github.com/huddlehq/huddle/internal/mcp"
	"github.com/huddlehq/huddle/internal/openapi"
	"github.com/huddlehq/huddle/internal/server/middleware"
	"github.com/huddlehq/huddle/internal/service"
	"github.com/huddlehq/huddle/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	RateLimit       int // requests per minute per IP; 0 disables
	Version         string
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		RateLimit:       300,
		Version:         "dev",
	}
}

// Server is the top-level HTTP server for Huddle. It owns the Chi router,
// the store, and the auth and vault services.
type Server struct {
	cfg        Config
	router     chi.Router
	store      *store.Store
	authSvc    *service.AuthService
	vaultSvc   *service.VaultService
	flags      *featureflag.Service
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg Config, st *store.Store, authSvc *service.AuthService, vaultSvc *service.VaultService, flags *featureflag.Service, logger *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		store:    st,
		authSvc:  authSvc,
		vaultSvc: vaultSvc,
		flags:    flags,
		logger:   logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))
	if s.cfg.RateLimit > 0 {
		r.Use(middleware.RateLimit(s.cfg.RateLimit))
	}

	// --- Health checks (no auth required) ---
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	// --- OpenAPI document (no auth required) ---
	r.Get("/openapi.json", s.handleOpenAPI)

	projectHandler := handler.NewProjectHandler(s.store, s.authSvc)
	taskHandler := handler.NewTaskHandler(s.store)
	pivotHandler := handler.NewPivotHandler(s.store)
	submissionHandler := handler.NewSubmissionHandler(s.store)
	vaultHandler := handler.NewVaultHandler(s.store, s.vaultSvc)
	flagsHandler := handler.NewFlagsHandler(s.flags)

	r.Route("/api", func(r chi.Router) {
		// Project creation mints the token, so it cannot be behind auth.
		r.Post("/projects", projectHandler.Create)

		// Public, unauthenticated share view of a submission.
		r.Get("/submission/{projectId}/public", submissionHandler.Public)

		// Everything else requires the project token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(s.authSvc))

			r.Route("/projects/{id}", func(r chi.Router) {
				r.Get("/", projectHandler.Get)
				r.Put("/", projectHandler.Update)

				r.Post("/members", projectHandler.AddMember)
				r.Delete("/members/{memberId}", projectHandler.RemoveMember)

				r.Get("/tasks", taskHandler.List)
				r.Post("/tasks", taskHandler.Create)

				r.Get("/pivots", pivotHandler.List)
				r.Post("/pivots", pivotHandler.Create)

				r.Get("/submission", submissionHandler.Get)
				r.Post("/submission", submissionHandler.Upsert)

				r.Get("/vault/secrets", vaultHandler.ListSecrets)
				r.Post("/vault/secrets", vaultHandler.CreateSecret)
				r.Get("/vault/requests", vaultHandler.ListRequests)
			})

			r.Put("/tasks/{taskId}", taskHandler.Update)
			r.Delete("/tasks/{taskId}", taskHandler.Delete)

			r.Put("/vault/secrets/{secretId}", vaultHandler.UpdateSecret)
			r.Delete("/vault/secrets/{secretId}", vaultHandler.DeleteSecret)
			r.Post("/vault/secrets/{secretId}/reveal", vaultHandler.Reveal)
			r.Post("/vault/secrets/{secretId}/requests", vaultHandler.RequestAccess)
			r.Get("/vault/secrets/{secretId}/status", vaultHandler.Status)
			r.Put("/vault/requests/{requestId}", vaultHandler.HandleRequest)

			r.Get("/flags", flagsHandler.List)
		})
	})

	// --- MCP tool surface, behind project auth ---
	mcpServer := mcp.NewMCPServer(s.store, s.vaultSvc, s.logger)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(s.authSvc))
		r.Handle("/mcp", mcpServer.HTTPHandler())
		r.Handle("/mcp/*", mcpServer.HTTPHandler())
	})

	s.router = r
}

// handleHealthz is a liveness probe. Returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
}

// handleReadyz is a readiness probe. Returns 200 when the store is
// reachable, or 503 when it is not.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	checks := map[string]string{}

	if err := s.store.Ping(r.Context()); err != nil {
		checks["store"] = "error: " + err.Error()
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
		"status": status,
		"checks": checks,
	})
}

// handleOpenAPI serves the generated OpenAPI 3.1 document.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	baseURL := fmt.Sprintf("http://%s", r.Host)
	doc := openapi.Generate(baseURL, s.cfg.Version)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(doc) //nolint:errcheck
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before closing the store.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Warn("store close", "error", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
