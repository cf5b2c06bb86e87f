package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/consultcal/internal/instrumentation"
	"github.com/teemow/consultcal/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the booking API",
		Long: `Start the HTTP API that lists free consultation slots and books them.

Routes:
  GET  /api/calendar/slots?date=YYYY-MM-DD
  POST /api/calendar/book
  GET  /healthz, /readyz, /healthz/detailed

Configuration:
  Every flag can also be set in the environment with the CONSULTCAL_ prefix
  (e.g. CONSULTCAL_CALENDAR_ID) or in the --config file. The variables
  PORT, GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, GOOGLE_REFRESH_TOKEN and
  GOOGLE_CALENDAR_ID are honoured as well.

  Use --calendar=memory to run without Google credentials.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd, configFile)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runServe(ctx, s)
		},
	}

	addCalendarFlags(cmd)
	cmd.Flags().String("port", "3000", "Port to listen on. Can also use PORT env var.")
	cmd.Flags().String("addr", "", "Full listen address (e.g. 127.0.0.1:3000). Overrides --port.")
	cmd.Flags().String("static-dir", "public", "Directory served at / if it exists. Empty disables static files.")
	cmd.Flags().String("cors-origins", "*", "Comma-separated list of allowed CORS origins. Empty disables CORS.")
	cmd.Flags().Float64("book-rate-limit", 0, "Booking requests per second allowed per client IP. 0 disables rate limiting.")
	cmd.Flags().Int("book-rate-burst", 5, "Booking request burst allowed per client IP")
	cmd.Flags().Bool("trust-forwarded-for", false, "Identify clients by X-Forwarded-For (only behind a trusted proxy)")
	cmd.Flags().Duration("shutdown-timeout", server.DefaultShutdownTimeout, "Time allowed for in-flight requests on shutdown")
	cmd.Flags().Bool("metrics-enabled", false, "Serve Prometheus metrics on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().String("metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")
	cmd.Flags().String("metrics-exporter", instrumentation.ExporterPrometheus, "Metrics exporter: prometheus, otlp or stdout")
	cmd.Flags().String("tracing-exporter", instrumentation.ExporterNone, "Tracing exporter: otlp, stdout or none")
	cmd.Flags().String("otlp-endpoint", "", "OTLP collector host:port. Can also use OTEL_EXPORTER_OTLP_ENDPOINT env var.")

	return cmd
}

// addCalendarFlags registers the flags shared by every command that talks to a calendar.
func addCalendarFlags(cmd *cobra.Command) {
	cmd.Flags().String("calendar", backendGoogle, "Calendar backend: google or memory")
	cmd.Flags().String("calendar-id", "primary", "Google Calendar ID. Can also use GOOGLE_CALENDAR_ID env var.")
	cmd.Flags().String("timezone", "Europe/Budapest", "IANA timezone of the working window")
	cmd.Flags().String("day-start", "09:00", "Start of the working window (HH:mm)")
	cmd.Flags().String("day-end", "17:00", "End of the working window (HH:mm)")
	cmd.Flags().Duration("slot-length", 30*time.Minute, "Length of one slot")
	cmd.Flags().String("summary-prefix", "AIRM konzultáció", "Prefix of booked event summaries")
	cmd.Flags().String("send-updates", "all", "Who Google notifies about new events: all, externalOnly or none")
	cmd.Flags().String("google-client-id", "", "Google OAuth client ID. Can also use GOOGLE_CLIENT_ID env var.")
	cmd.Flags().String("google-client-secret", "", "Google OAuth client secret. Can also use GOOGLE_CLIENT_SECRET env var.")
	cmd.Flags().String("google-refresh-token", "", "Google OAuth refresh token. Can also use GOOGLE_REFRESH_TOKEN env var.")
}

func runServe(ctx context.Context, s Settings) error {
	logger, err := newLogger(s, os.Stderr)
	if err != nil {
		return err
	}

	instrConfig := s.InstrumentationConfig(version)
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during instrumentation shutdown", "error", err)
		}
	}()

	svc, err := newBookingService(ctx, s, logger, provider, instrConfig.AuditLogging)
	if err != nil {
		return err
	}

	if s.MetricsEnabled && provider.Enabled() {
		metricsServer, err := startMetricsServer(s.MetricsAddr, provider, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("error during metrics server shutdown", "error", err)
			}
		}()
	}

	apiServer, err := server.NewAPIServer(svc, apiConfig(s, logger, provider))
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", apiServer.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", apiServer.Addr(), err)
	}
	logger.Info("consultcal ready",
		"addr", ln.Addr().String(),
		"calendar", s.Calendar,
		"calendar_id", svc.Config().CalendarID,
		"timezone", svc.Config().TimeZone())

	return serveUntilDone(ctx, apiServer, ln, s.ShutdownTimeout, logger)
}

func apiConfig(s Settings, logger *slog.Logger, provider *instrumentation.Provider) server.APIConfig {
	cors := server.DefaultCORSPolicy()
	cors.AllowedOrigins = parseCommaSeparatedList(s.CORSOrigins)

	config := server.APIConfig{
		Addr:      s.ListenAddr(),
		StaticDir: s.StaticDir,
		CORS:      cors,
		BookRateLimit: server.RateLimitConfig{
			Rate:              s.BookRateLimit,
			Burst:             s.BookRateBurst,
			TrustForwardedFor: s.TrustForwardedFor,
		},
		Logger: logger,
	}
	if provider != nil && provider.Enabled() {
		config.Metrics = provider.Metrics()
	}
	return config
}

// startMetricsServer binds addr before returning so startup errors surface immediately.
func startMetricsServer(addr string, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	ln, err := net.Listen("tcp", metricsServer.Addr())
	if err != nil {
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	}
	go func() {
		if err := metricsServer.Serve(ln); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	return metricsServer, nil
}

// serveUntilDone serves api on ln until ctx is cancelled or the server fails,
// then drains in-flight requests for at most timeout.
func serveUntilDone(ctx context.Context, api *server.APIServer, ln net.Listener, timeout time.Duration, logger *slog.Logger) error {
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- api.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		if timeout <= 0 {
			timeout = server.DefaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := api.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
		if err := <-serverDone; err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
