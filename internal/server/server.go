// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gotodo/gotodo/internal/config"
	"github.com/gotodo/gotodo/internal/handlers"
	"github.com/gotodo/gotodo/internal/metrics"
	"github.com/gotodo/gotodo/internal/middleware"
	"github.com/gotodo/gotodo/internal/ratelimit"
	"github.com/gotodo/gotodo/internal/security"
	"github.com/gotodo/gotodo/internal/services"
	"github.com/gotodo/gotodo/internal/token"
	"github.com/gotodo/gotodo/pkg/logger"
)

// Server represents the HTTP server.
type Server struct {
	cfg        *config.Config
	log        *logger.Logger
	httpServer *http.Server
	handler    http.Handler

	healthHandler *handlers.HealthHandler
	docsHandler   *handlers.DocsHandler
	authHandler   *handlers.AuthHandler
	userHandler   *handlers.UserHandler
	tagHandler    *handlers.TagHandler
	taskHandler   *handlers.TaskHandler

	authService   services.AuthService
	rateLimiter   ratelimit.Limiter
	signInLimiter ratelimit.Limiter

	listener net.Listener
	running  bool
	mu       sync.RWMutex
}

// New creates a new Server instance from already opened dependencies.
func New(cfg *config.Config, log *logger.Logger, deps *Dependencies) (*Server, error) {
	if deps == nil || deps.Users == nil || deps.Tags == nil || deps.Tasks == nil {
		return nil, errors.New("server: repositories are required")
	}

	tokens, err := token.NewManager(token.Config{
		Secret:     cfg.Auth.JWTSecret,
		Issuer:     cfg.Auth.Issuer,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	hasher := security.NewPasswordHasher(cfg.Auth.BcryptCost)

	s := &Server{
		cfg:           cfg,
		log:           log,
		healthHandler: handlers.NewHealthHandler(),
		docsHandler:   handlers.NewDocsHandler(),
		authService:   services.NewAuthService(deps.Users, hasher, tokens),
	}
	s.authHandler = handlers.NewAuthHandler(s.authService)
	s.userHandler = handlers.NewUserHandler(services.NewUserService(deps.Users, hasher))
	s.tagHandler = handlers.NewTagHandler(services.NewTagService(deps.Tags))
	s.taskHandler = handlers.NewTaskHandler(services.NewTaskService(deps.Tasks, deps.Tags))

	for name, check := range deps.Checks {
		s.healthHandler.AddCheck(name, check)
	}

	signInCfg := ratelimit.Config{Requests: cfg.Rate.SignInRequests, Window: cfg.Rate.SignInWindow}
	if deps.Redis != nil {
		s.signInLimiter = ratelimit.NewRedisLimiter(deps.Redis, signInCfg, "gotodo:ratelimit:")
	} else {
		s.signInLimiter = ratelimit.NewMemoryLimiter(signInCfg)
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)
	s.handler = s.buildMiddlewareChain(mux)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s, nil
}

// buildMiddlewareChain creates the middleware chain for the server.
func (s *Server) buildMiddlewareChain(handler http.Handler) http.Handler {
	chain := middleware.New(
		middleware.Metrics(),
		middleware.RequestID(),
		middleware.ClientIP(s.cfg.Rate.TrustProxy, nil),
		middleware.Logging(s.log),
		middleware.Recover(s.log),
	)

	if s.cfg.Rate.Enabled {
		s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.Config{
			Requests: s.cfg.Rate.Requests,
			Window:   s.cfg.Rate.Window,
		})

		chain = chain.Append(middleware.RateLimit(s.rateLimiter, middleware.RateLimitConfig{
			TrustProxy:   s.cfg.Rate.TrustProxy,
			APIKeyHeader: s.cfg.Rate.APIKeyHeader,
			Logger:       s.log,
		}))

		s.log.Info("rate limiting enabled",
			"requests", s.cfg.Rate.Requests,
			"window", s.cfg.Rate.Window.String(),
		)
	}

	return chain.Then(handler)
}

// registerRoutes sets up the HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.healthHandler.Health)
	mux.HandleFunc("GET /ready", s.healthHandler.Ready)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /docs", s.docsHandler.ScalarUI)
	mux.HandleFunc("GET /docs/redoc", s.docsHandler.Redoc)
	mux.HandleFunc("GET /docs/openapi.yaml", s.docsHandler.OpenAPISpec)

	authed := middleware.New(middleware.Auth(s.authService, s.log))
	signIn := middleware.New(middleware.RateLimit(s.signInLimiter, middleware.RateLimitConfig{
		TrustProxy: s.cfg.Rate.TrustProxy,
		KeyPrefix:  "signin:",
		Logger:     s.log,
	}))

	mux.HandleFunc("POST /api/v1/users", s.userHandler.Register)
	mux.Handle("GET /api/v1/users/me", authed.ThenFunc(s.userHandler.Me))

	mux.Handle("POST /api/v1/auth/sign-in", signIn.ThenFunc(s.authHandler.SignIn))
	mux.HandleFunc("POST /api/v1/auth/refresh", s.authHandler.Refresh)

	mux.HandleFunc("GET /api/v1/tags", s.tagHandler.List)
	mux.HandleFunc("POST /api/v1/tags", s.tagHandler.Create)
	mux.HandleFunc("DELETE /api/v1/tags/{id}", s.tagHandler.Delete)

	mux.Handle("GET /api/v1/tasks/user", authed.ThenFunc(s.taskHandler.ListForUser))
	mux.Handle("POST /api/v1/tasks", authed.ThenFunc(s.taskHandler.Create))
	mux.Handle("PUT /api/v1/tasks/{id}", authed.ThenFunc(s.taskHandler.Update))
	mux.Handle("DELETE /api/v1/tasks/{id}", authed.ThenFunc(s.taskHandler.Delete))
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	// Listen first so Addr reports the real port when Port is 0.
	listener, err := net.Listen("tcp", s.cfg.Server.Address())
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	s.log.Info("server starting", "address", listener.Addr().String())

	err = s.httpServer.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("server shutting down")

	s.healthHandler.SetReady(false)

	err := s.httpServer.Shutdown(ctx)

	for _, l := range []ratelimit.Limiter{s.rateLimiter, s.signInLimiter} {
		if l == nil {
			continue
		}
		if closeErr := l.Close(); closeErr != nil {
			s.log.Error("failed to close rate limiter", "error", closeErr.Error())
		}
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if err != nil {
		s.log.Error("shutdown error", "error", err.Error())
		return err
	}

	s.log.Info("server stopped")
	return nil
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's address.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// HealthHandler returns the health handler.
func (s *Server) HealthHandler() *handlers.HealthHandler {
	return s.healthHandler
}
