package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/teemow/consultcal/internal/booking"
	"github.com/teemow/consultcal/internal/instrumentation"
)

const (
	// DefaultAPIAddr is the default listen address for the booking API.
	DefaultAPIAddr = ":3000"

	// DefaultReadHeaderTimeout bounds how long a client may take to send headers.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultWriteTimeout covers a full free/busy or insert round trip to Google.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the keep-alive timeout for idle connections.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultMaxBodyBytes caps the size of a booking request body.
	DefaultMaxBodyBytes = 64 << 10

	// SlotsPath and BookPath are the routes of the booking API.
	SlotsPath = "/api/calendar/slots"
	BookPath  = "/api/calendar/book"
)

// Booker is the booking behaviour the API exposes. *booking.Service implements it.
type Booker interface {
	AvailableSlots(ctx context.Context, date string) ([]string, error)
	Book(ctx context.Context, raw booking.RawRequest) (booking.Confirmation, error)
}

// APIConfig configures the booking API server.
type APIConfig struct {
	// Addr is the address to listen on (e.g., ":3000").
	Addr string

	// StaticDir is served at "/" when it exists. Empty disables static files.
	StaticDir string

	// CORS is applied to the API routes. No allowed origins disables CORS headers.
	CORS CORSPolicy

	// BookRateLimit limits booking requests per client IP. A zero Rate disables it.
	BookRateLimit RateLimitConfig

	// MaxBodyBytes caps request bodies. Zero uses DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// Metrics records HTTP request metrics. Nil disables recording.
	Metrics *instrumentation.Metrics

	// Logger is used for access and error logs. Nil uses slog.Default().
	Logger *slog.Logger
}

// APIServer serves the slot discovery and booking endpoints.
type APIServer struct {
	booker     Booker
	config     APIConfig
	logger     *slog.Logger
	health     *HealthChecker
	limiter    *RateLimiter
	handler    http.Handler
	httpServer *http.Server
}

// NewAPIServer creates an APIServer backed by booker.
func NewAPIServer(booker Booker, config APIConfig) (*APIServer, error) {
	if booker == nil {
		return nil, fmt.Errorf("booker cannot be nil")
	}
	if config.Addr == "" {
		config.Addr = DefaultAPIAddr
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &APIServer{
		booker: booker,
		config: config,
		logger: logger,
		health: NewHealthChecker(),
	}
	if config.BookRateLimit.Enabled() {
		s.limiter = NewRateLimiter(config.BookRateLimit, logger)
	}
	s.handler = s.routes()
	s.httpServer = &http.Server{
		Addr:              config.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}
	return s, nil
}

func (s *APIServer) routes() http.Handler {
	mux := http.NewServeMux()

	book := http.Handler(http.HandlerFunc(s.handleBook))
	if s.limiter != nil {
		book = s.limiter.Middleware()(book)
	}

	mux.Handle("GET "+SlotsPath, s.instrument(SlotsPath, http.HandlerFunc(s.handleSlots)))
	mux.Handle("POST "+BookPath, s.instrument(BookPath, WithBodyLimit(s.config.MaxBodyBytes)(book)))

	s.health.RegisterHealthEndpoints(mux)

	if dir := s.config.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			mux.Handle("GET /", http.FileServer(http.Dir(dir)))
		} else {
			s.logger.Info("static directory not found, skipping", "dir", dir)
		}
	}

	return Chain(mux,
		WithRequestID,
		WithAccessLog(s.logger),
		WithCORS(s.config.CORS),
	)
}

func (s *APIServer) instrument(route string, h http.Handler) http.Handler {
	return WithInstrumentation(s.config.Metrics, route)(h)
}

// Handler returns the fully wrapped HTTP handler.
func (s *APIServer) Handler() http.Handler {
	return s.handler
}

// Health returns the server's health checker.
func (s *APIServer) Health() *HealthChecker {
	return s.health
}

// Addr returns the configured listen address.
func (s *APIServer) Addr() string {
	return s.config.Addr
}

// Start listens on the configured address and serves until Shutdown is called.
// It returns nil after a graceful shutdown.
func (s *APIServer) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves the API on ln.
func (s *APIServer) Serve(ln net.Listener) error {
	s.logger.Info("starting booking API", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown marks the server as shutting down and drains in-flight requests.
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.health.SetShuttingDown()
	if s.limiter != nil {
		s.limiter.Stop()
	}
	s.logger.Info("shutting down booking API")
	return s.httpServer.Shutdown(ctx)
}
