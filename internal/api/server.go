// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/greeter/internal/greeting"
	"github.com/taibuivan/greeter/internal/platform/config"
	"github.com/taibuivan/greeter/internal/platform/constants"
	"github.com/taibuivan/greeter/internal/platform/metrics"
	"github.com/taibuivan/greeter/internal/platform/middleware"
	"github.com/taibuivan/greeter/internal/ratelimit"
	"github.com/taibuivan/greeter/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// SessionManager verifies session cookies and resumes remember-me logins.
type SessionManager interface {
	middleware.SessionVerifier
	middleware.SessionResumer
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler, always 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler, 200 when all dependencies answer.
	Readiness http.HandlerFunc

	// Metrics exposes the prometheus registry.
	Metrics http.Handler

	// Auth handles signup, login, logout and whoami.
	Auth *auth.Handler

	// Greeting handles the hello endpoint and greeting history.
	Greeting *greeting.Handler
}

// Guard groups the request gate dependencies.
type Guard struct {
	Sessions SessionManager
	Limiter  *ratelimit.Limiter
	Metrics  metrics.Recorder
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(cfg *config.Config, log *slog.Logger, guard Guard, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery())
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(chimw.CleanPath)
	r.Use(middleware.SessionAuth(guard.Sessions))
	r.Use(middleware.RateLimit(guard.Limiter, middleware.GateConfig{
		PathPrefix: cfg.RateLimitPathPrefix,
		TrustProxy: cfg.TrustProxyHeaders,
	}, guard.Metrics))
	r.Use(middleware.RememberMe(guard.Sessions))

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Method(http.MethodGet, "/metrics", h.Metrics)

	// # Account Endpoints
	r.Post("/signup", h.Auth.Signup)
	r.Post("/login", h.Auth.Login)
	r.Post("/logout", h.Auth.Logout)

	// # Application API
	r.Route("/api", func(api chi.Router) {
		api.Get("/whoami", h.Auth.WhoAmI)
		api.Mount("/", h.Greeting.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
