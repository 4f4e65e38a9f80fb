// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go loads config and constructs the long-lived primitives
// (token service, password service, origin policy), then Server.New
// creates: sqlite.DB → services → handlers and wires them to routes.
//
// This is the "composition root" pattern — all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/worktracker/internal/auth"
	"github.com/sakif/worktracker/internal/handler"
	"github.com/sakif/worktracker/internal/middleware"
	sqliteRepo "github.com/sakif/worktracker/internal/repository/sqlite"
	"github.com/sakif/worktracker/internal/service"
)

// Config holds server configuration.
// Using a struct for config (instead of individual parameters) makes it easy to:
// - Add new config options without changing function signatures
// - Pass config around as a single value
// - Load config from files/env vars in one place
type Config struct {
	Port         int
	DBPath       string
	Env          string // "development" or "production"
	SessionTTL   time.Duration
	SecureCookie bool // true in production: session cookie gets the Secure flag

	// Rate limits, requests per window.
	GlobalRateLimit int
	AuthRateLimit   int
	RateWindow      time.Duration
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection (db). When the server shuts down,
// we must close this connection to flush any pending writes and release the
// file lock. This is handled in Start() during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a new Server with the given config.
//
// DEPENDENCY INJECTION & WIRING:
// This is where the dependency chain is assembled:
//  1. Create the database connection (sqlite.New)
//  2. Create the service layer with the repository interfaces
//  3. Create the handlers with the services
//  4. Wire handlers to routes with the right middleware per subtree
//
// Each layer only receives what it needs:
// - Services get repository interfaces (not the concrete sqlite.DB)
// - Handlers get services (not repositories or the DB)
func New(cfg Config, tokens *auth.TokenService, passwords *auth.PasswordService, origin *auth.OriginPolicy, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	s.setupRoutes(tokens, passwords, origin)
	return s, nil
}

// Handler exposes the router so tests can drive the server through
// httptest without opening a real listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's resources. Start() does this itself on
// graceful shutdown; tests that never call Start() use Close directly.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /api/health                             → liveness + storage check
// GET    /metrics                                → Prometheus metrics
// GET    /api/auth/csrf                          → issue CSRF token
// POST   /api/auth/register                      → create account + session
// POST   /api/auth/login                         → authenticate + session
// POST   /api/auth/logout                        → clear session
// GET    /api/auth/me                            → current user        [auth]
// GET    /api/timer/status                       → active entry        [auth]
// POST   /api/timer/start                        → clock in            [auth]
// POST   /api/timer/stop                         → clock out           [auth]
// GET    /api/timer/entries?from=&to=            → list entries        [auth]
// POST   /api/timer/entries                      → manual entry        [auth]
// PUT    /api/timer/entries/{entryID}            → edit entry          [auth]
// GET    /api/timer/day-adjustments?from=&to=    → list adjustments    [auth]
// PUT    /api/timer/day-adjustments/{dayDate}    → set day type        [auth]
// DELETE /api/timer/day/{dayDate}                → reset a day         [auth]
// GET    /api/timer/week-summary?start=          → weekly aggregation  [auth]
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
//  1. RequestID — assigns unique ID to each request (for tracing)
//  2. RealIP — extracts real client IP from proxy headers (rate limit keys on it)
//  3. Recoverer — catches panics and returns 500 instead of crashing
//  4. Metrics — counts and times every request
//  5. Logger — logs each request with timing info
//  6. SecureHeaders — browser hardening headers on every response
//  7. Origin guard — rejects cross-site state changes in production
//  8. Global rate limit
// The auth subtree adds its own stricter limiter, and every
// state-changing subtree adds the CSRF guard.
func (s *Server) setupRoutes(tokens *auth.TokenService, passwords *auth.PasswordService, origin *auth.OriginPolicy) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Metrics())
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.SecureHeaders)
	s.router.Use(origin.Guard)
	s.router.Use(middleware.NewRateLimiter(s.config.GlobalRateLimit, s.config.RateWindow).Handler)

	// DEPENDENCY CHAIN:
	//   s.db (sqlite.DB) implements every repository interface
	//   services receive the repository interfaces
	//   handlers receive the services
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	timerService := service.NewTimerService(s.db, s.db, nil, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.config.SessionTTL, s.config.SecureCookie, s.logger)
	timerHandler := handler.NewTimerHandler(timerService, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.config.Env)

	s.router.Get("/api/health", healthHandler.HandleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	authLimiter := middleware.NewRateLimiter(s.config.AuthRateLimit, s.config.RateWindow)

	s.router.Route("/api/auth", func(r chi.Router) {
		r.Use(authLimiter.Handler)
		r.Use(auth.CSRFGuard)

		r.Get("/csrf", authHandler.HandleCSRF)
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", authHandler.HandleMe)
		})
	})

	s.router.Route("/api/timer", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Use(auth.CSRFGuard)

		r.Get("/status", timerHandler.HandleStatus)
		r.Post("/start", timerHandler.HandleStart)
		r.Post("/stop", timerHandler.HandleStop)
		r.Get("/entries", timerHandler.HandleListEntries)
		r.Post("/entries", timerHandler.HandleCreateEntry)
		r.Put("/entries/{entryID}", timerHandler.HandleUpdateEntry)
		r.Get("/day-adjustments", timerHandler.HandleListAdjustments)
		r.Put("/day-adjustments/{dayDate}", timerHandler.HandleSaveAdjustment)
		r.Delete("/day/{dayDate}", timerHandler.HandleResetDay)
		r.Get("/week-summary", timerHandler.HandleWeekSummary)
	})

	// Unknown API routes answer in the same JSON error shape as everything
	// else, instead of chi's plain-text 404.
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"not_found","message":"route not found"}`)
	})
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the database connection (flushes WAL, releases file lock)
//
// The `defer s.db.Close()` ensures step 3 happens even if something panics.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("env", s.config.Env),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
