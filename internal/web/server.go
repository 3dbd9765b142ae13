package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kozaktomas/face-groups/internal/config"
	"github.com/kozaktomas/face-groups/internal/constants"
	"github.com/kozaktomas/face-groups/internal/facegroup"
	"github.com/kozaktomas/face-groups/internal/web/handlers"
	"github.com/kozaktomas/face-groups/internal/web/middleware"
)

// Deps are the collaborators the HTTP handlers run against.
type Deps struct {
	Identifier  handlers.Identifier
	Verifier    handlers.Verifier
	Face        handlers.TrainingStatusGetter
	VerifyStore facegroup.BlobStore
	FetchImage  handlers.ImageFetcher
	GroupID     string
}

// Server represents the web server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	logger     *zap.Logger
	imageHosts []string
}

// NewServer creates a new web server
func NewServer(cfg config.WebConfig, deps Deps, logger *zap.Logger) *Server {
	r := chi.NewRouter()
	s := &Server{router: r, logger: logger, imageHosts: cfg.ImageHosts}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(constants.RequestTimeout))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.SecurityHeaders())

	s.setupRoutes(deps)

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      constants.RequestTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start starts the HTTP server and blocks until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting web server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down web server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
