package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teemow/consultcal/internal/booking"
	"github.com/teemow/consultcal/internal/calendar"
	"github.com/teemow/consultcal/internal/google"
	"github.com/teemow/consultcal/internal/instrumentation"
)

// newCalendar returns the calendar backend selected by s.Calendar.
// metrics may be nil.
func newCalendar(ctx context.Context, s Settings, metrics *instrumentation.Metrics) (booking.Calendar, error) {
	switch s.Calendar {
	case backendGoogle, "":
		creds := s.Credentials()
		if err := creds.Validate(true); err != nil {
			return nil, fmt.Errorf("%w (set GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REFRESH_TOKEN, or use --calendar=memory)", err)
		}
		var recorder google.RefreshRecorder
		if metrics != nil {
			recorder = metrics
		}
		provider := google.NewRefreshTokenProvider(creds, recorder)
		client, err := calendar.NewClient(ctx, provider,
			calendar.WithMetrics(metrics),
			calendar.WithSendUpdates(s.SendUpdates))
		if err != nil {
			return nil, err
		}
		return client, nil
	case backendMemory:
		return calendar.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported calendar backend %q (supported: %s, %s)", s.Calendar, backendGoogle, backendMemory)
	}
}

// newBookingService wires the booking core to its calendar and observability.
func newBookingService(ctx context.Context, s Settings, logger *slog.Logger, provider *instrumentation.Provider, audit instrumentation.AuditLoggingConfig) (*booking.Service, error) {
	cfg, err := s.BookingConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid booking settings: %w", err)
	}

	var metrics *instrumentation.Metrics
	if provider != nil && provider.Enabled() {
		metrics = provider.Metrics()
	}

	cal, err := newCalendar(ctx, s, metrics)
	if err != nil {
		return nil, err
	}

	opts := []booking.Option{
		booking.WithLogger(logger),
		booking.WithAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, audit)),
	}
	if metrics != nil {
		opts = append(opts, booking.WithRecorder(metrics))
	}
	return booking.NewService(cfg, cal, opts...)
}
