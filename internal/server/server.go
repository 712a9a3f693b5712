// Package server wires the controllers into an HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/avgui-demo/internal/config"
	"github.com/vyrodovalexey/avgui-demo/internal/handler"
	"github.com/vyrodovalexey/avgui-demo/internal/middleware"
	"github.com/vyrodovalexey/avgui-demo/internal/store"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	handler    http.Handler
	config     *config.Config
	logger     *zap.Logger
	frames     *handler.FrameHandler
}

// New creates a new Server instance serving the to-do list from todoStore
// and movie lookups from movies.
func New(cfg *config.Config, logger *zap.Logger, todoStore store.Store, movies handler.MovieSource) *Server {
	router := mux.NewRouter()

	s := &Server{
		router: router,
		config: cfg,
		logger: logger,
	}

	s.setupMiddleware()
	s.setupRoutes(todoStore, movies)
	s.setupHTTPServer()

	return s
}

// setupMiddleware configures the middleware chain.
func (s *Server) setupMiddleware() {
	allowedOrigins := s.config.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{config.DefaultAllowedOrigins}
	}

	// Apply middleware in order (first applied = outermost)
	s.router.Use(mux.MiddlewareFunc(middleware.Recovery(s.logger)))
	s.router.Use(mux.MiddlewareFunc(middleware.RequestID()))

	if s.config.MetricsEnabled {
		s.router.Use(mux.MiddlewareFunc(middleware.Metrics()))
	}

	s.router.Use(mux.MiddlewareFunc(middleware.Logging(s.logger)))

	// CORS wraps the router itself: mux runs route middleware only on a
	// match, and preflight requests match no route.
	s.handler = middleware.CORS(
		allowedOrigins,
		middleware.DefaultCORSMethods,
		middleware.DefaultCORSHeaders,
	)(s.router)
}

// setupRoutes registers every controller.
func (s *Server) setupRoutes(todoStore store.Store, movies handler.MovieSource) {
	handler.NewHealthHandler(s.logger).RegisterRoutes(s.router)
	handler.NewTodoHandler(todoStore, s.logger).RegisterRoutes(s.router)
	handler.NewDemoHandler(s.config.DevToolsURL, s.logger).RegisterRoutes(s.router)

	if movies != nil {
		handler.NewTMDBHandler(movies, s.logger).RegisterRoutes(s.router)
	}

	s.frames = handler.NewFrameHandler(s.logger)
	s.frames.RegisterRoutes(s.router)
	handler.NewScriptHandler(s.frames, s.logger).RegisterRoutes(s.router)

	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
}

// setupHTTPServer configures the HTTP server.
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
		zap.Bool("tmdb_enabled", s.config.TMDBAPIKey != ""),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	// Frame connections are hijacked and not tracked by http.Server.
	s.frames.CloseAllConnections()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Router returns the server's router for testing purposes.
func (s *Server) Router() *mux.Router {
	return s.router
}
