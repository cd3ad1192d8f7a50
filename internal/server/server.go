package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/studentdesk/internal/bootstrap"
	"github.com/yigit/studentdesk/internal/config"
)

// Server holds the state for one HTTP service.
type Server struct {
	name            string
	logger          zerolog.Logger
	http            *http.Server
	shutdownTimeout time.Duration
	onStart         []func(context.Context)
	onShutdown      []func()
}

// NewServer wraps handler in an HTTP server listening on port
func NewServer(name, port string, handler http.Handler, shutdownTimeout time.Duration, lgr zerolog.Logger) *Server {
	return &Server{
		name:   name,
		logger: lgr.With().Str("service", name).Logger(),
		http: &http.Server{
			Addr:         ":" + port,
			Handler:      handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// NewDeskServer builds the desk: session state, views and live updates.
// The session is started by Run and torn down on shutdown.
func NewDeskServer(cfg *config.Config, lgr zerolog.Logger) (*Server, *bootstrap.Dependencies) {
	deps := bootstrap.BuildDependencies(cfg, lgr)
	router := bootstrap.SetupRouter(cfg, deps, lgr)

	s := NewServer("desk", cfg.Server.Port, router, bootstrap.ShutdownTimeout(cfg), lgr)
	s.OnStart(deps.Start)
	s.OnShutdown(deps.Close)
	return s, deps
}

// NewDevAPIServer builds the in-memory reference backend
func NewDevAPIServer(cfg *config.Config, lgr zerolog.Logger) (*Server, error) {
	dev, err := bootstrap.BuildDevAPI(cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup reference backend: %w", err)
	}
	return NewServer("devapi", cfg.DevAPI.Port, dev.Router, bootstrap.ShutdownTimeout(cfg), lgr), nil
}

// OnStart registers fn to run with the serving context before the listener
// accepts connections
func (s *Server) OnStart(fn func(context.Context)) {
	s.onStart = append(s.onStart, fn)
}

// OnShutdown registers fn to run after the HTTP server has stopped
func (s *Server) OnShutdown(fn func()) {
	s.onShutdown = append(s.onShutdown, fn)
}

// Run serves until ctx is cancelled or the listener fails, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("error starting %s server: %w", s.name, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	for _, fn := range s.onStart {
		fn(ctx)
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")
		serverErrors <- s.http.Serve(ln)
	}()

	// Block until we receive either a server error or cancellation
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			s.runShutdownHooks()
			return fmt.Errorf("error running %s server: %w", s.name, err)
		}
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown requested, stopping server...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and runs the shutdown hooks.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	var shutdownErr error
	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("HTTP server shutdown error")
		shutdownErr = fmt.Errorf("%s server shutdown: %w", s.name, err)
	} else {
		s.logger.Info().Msg("HTTP server gracefully stopped.")
	}

	s.runShutdownHooks()

	s.logger.Info().Msg("Server shutdown process complete.")
	return shutdownErr
}

func (s *Server) runShutdownHooks() {
	hooks := s.onShutdown
	s.onShutdown = nil
	for _, fn := range hooks {
		fn()
	}
}
