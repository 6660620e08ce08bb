package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/barrymcandrews/aurora-home-skill/internal/directive"
	"github.com/barrymcandrews/aurora-home-skill/internal/gateway"
	"github.com/barrymcandrews/aurora-home-skill/internal/infrastructure/config"
	"github.com/barrymcandrews/aurora-home-skill/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// DirectiveHandler processes one parsed directive. *directive.Router
// satisfies it.
type DirectiveHandler interface {
	Handle(ctx context.Context, req *directive.Request) (directive.Outcome, error)
}

// StatsProvider exposes gateway cache statistics. *gateway.Gateway
// satisfies it.
type StatsProvider interface {
	Stats() gateway.Stats
}

// HealthChecker is implemented by the channel API client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ConnectionStatus is implemented by the MQTT client.
type ConnectionStatus interface {
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	Logger     *logging.Logger
	Directives DirectiveHandler
	Gateway    StatsProvider    // optional: gateway stats on /api/v1/metrics
	Channels   HealthChecker    // optional: upstream status on /api/v1/health
	MQTT       ConnectionStatus // optional: broker status on /api/v1/metrics
	Prometheus http.Handler     // optional: served on /metrics
	Version    string
}

// Server is the HTTP front door of the skill.
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
type Server struct {
	cfg        config.APIConfig
	logger     *logging.Logger
	directives DirectiveHandler
	gateway    StatsProvider
	channels   HealthChecker
	mqtt       ConnectionStatus
	prometheus http.Handler
	version    string
	startTime  time.Time
	server     *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, directive handler)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Directives == nil {
		return nil, fmt.Errorf("directive handler is required")
	}

	return &Server{
		cfg:        deps.Config,
		logger:     deps.Logger,
		directives: deps.Directives,
		gateway:    deps.Gateway,
		channels:   deps.Channels,
		mqtt:       deps.MQTT,
		prometheus: deps.Prometheus,
		version:    deps.Version,
		startTime:  time.Now(),
	}, nil
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
