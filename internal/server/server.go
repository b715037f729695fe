package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/nkovacs/skinpriced/internal/model"
	"github.com/nkovacs/skinpriced/internal/refresher"
)

// PriceResolver answers price lookups for raw market names.
type PriceResolver interface {
	Resolve(ctx context.Context, rawName string) (model.PriceEntry, bool)
}

// RefreshRunner controls catalog refresh runs.
type RefreshRunner interface {
	Start(ctx context.Context, workers int) (refresher.Status, error)
	Status() refresher.Status
}

// Pinger reports whether the durable store is reachable.
// *pgxpool.Pool satisfies this directly.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SnapshotInfo reports the state of the bulk provider snapshot.
type SnapshotInfo interface {
	SnapshotAge() (time.Duration, bool)
	SnapshotSize() int
}

// Config holds server settings.
type Config struct {
	// Port is the TCP port to listen on.
	Port int

	// ShutdownTimeout bounds graceful shutdown. Defaults to 10s.
	ShutdownTimeout time.Duration

	// ProgressInterval is the websocket push cadence. Defaults to 1s.
	ProgressInterval time.Duration
}

// DefaultConfig returns server settings with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:             8080,
		ShutdownTimeout:  10 * time.Second,
		ProgressInterval: time.Second,
	}
}

// Server is the HTTP control surface. Create with New, then Start.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	resolver PriceResolver
	runner   RefreshRunner
	db       Pinger
	bulk     SnapshotInfo

	httpSrv  *http.Server
	upgrader websocket.Upgrader

	// baseCtx is the lifetime context refresh runs are bound to, so a
	// run outlives the HTTP request that triggered it but not the
	// process.
	baseCtx context.Context
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server. db and bulk may be nil; the health endpoint
// degrades gracefully when they are absent.
func New(cfg Config, res PriceResolver, runner RefreshRunner, db Pinger, bulk SnapshotInfo, opts ...Option) (*Server, error) {
	if res == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if runner == nil {
		return nil, fmt.Errorf("refresh runner is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = DefaultConfig().Port
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = DefaultConfig().ProgressInterval
	}

	s := &Server{
		cfg:      cfg,
		logger:   slog.Default(),
		resolver: res,
		runner:   runner,
		db:       db,
		bulk:     bulk,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket connections manage their own deadlines
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", s.handleHealth)
	r.Get("/price", s.handlePrice)
	r.Route("/refresh", func(r chi.Router) {
		r.Post("/", s.handleRefresh)
		r.Get("/status", s.handleRefreshStatus)
		r.Get("/progress", s.handleRefreshProgress)
	})

	return r
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Start begins serving in the background. ctx bounds refresh runs
// triggered through the API.
func (s *Server) Start(ctx context.Context) error {
	s.baseCtx = ctx

	s.logger.Info("starting http server", "addr", s.httpSrv.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Surface immediate bind failures to the caller.
	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping http server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
