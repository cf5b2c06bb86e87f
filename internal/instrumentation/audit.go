package instrumentation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/consultcal/internal/logging"
)

// BookingRecord captures one booking attempt for the audit trail.
//
// # Privacy Considerations
//
// Name and Email are PII. LogAttrs replaces them with a hashed identifier
// and the email domain; only LogAuditAttrs writes them verbatim.
type BookingRecord struct {
	// Target calendar
	CalendarID string

	// Requested slot
	Date string
	Time string
	Mode string

	// Booker identity as submitted
	Name  string
	Email string

	// Outcome
	EventID   string
	StartTime time.Time
	Duration  time.Duration
	Status    string
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// NewBookingRecord creates a BookingRecord with timing started.
// Call Complete when the booking finishes.
func NewBookingRecord(calendarID string) *BookingRecord {
	return &BookingRecord{
		CalendarID: calendarID,
		StartTime:  time.Now(),
	}
}

// WithSlot sets the requested date, time and mode.
func (br *BookingRecord) WithSlot(date, clock, mode string) *BookingRecord {
	br.Date = date
	br.Time = clock
	br.Mode = mode
	return br
}

// WithBooker sets the booker identity.
func (br *BookingRecord) WithBooker(name, email string) *BookingRecord {
	br.Name = name
	br.Email = email
	return br
}

// WithSpanContext extracts trace context from the current span.
func (br *BookingRecord) WithSpanContext(ctx context.Context) *BookingRecord {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		br.TraceID = span.SpanContext().TraceID().String()
		br.SpanID = span.SpanContext().SpanID().String()
	}
	return br
}

// Complete marks the booking as finished with the given status.
// eventID is only set on success.
func (br *BookingRecord) Complete(status, eventID string, err error) *BookingRecord {
	br.Duration = time.Since(br.StartTime)
	br.Status = status
	br.EventID = eventID
	if err != nil {
		br.Error = err.Error()
	}
	return br
}

// Success reports whether the event was created.
func (br *BookingRecord) Success() bool {
	return br.Status == StatusSuccess
}

// UserDomain returns the domain portion of the booker's email.
func (br *BookingRecord) UserDomain() string {
	return ExtractUserDomain(br.Email)
}

func (br *BookingRecord) commonAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String(logging.KeyCalendar, br.CalendarID),
		slog.String(logging.KeyDate, br.Date),
		slog.String("time", br.Time),
		slog.String(logging.KeyMode, br.Mode),
		slog.String(logging.KeyStatus, br.Status),
		slog.Duration(logging.KeyDuration, br.Duration),
	}
	if br.EventID != "" {
		attrs = append(attrs, slog.String("event_id", br.EventID))
	}
	if br.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", br.TraceID))
	}
	if br.Error != "" {
		attrs = append(attrs, slog.String(logging.KeyError, br.Error))
	}
	return attrs
}

// LogAttrs returns slog attributes without PII: the booker is identified by
// a stable hash and the email domain.
func (br *BookingRecord) LogAttrs() []slog.Attr {
	return append(br.commonAttrs(),
		logging.UserHash(br.Email),
		slog.String("user_domain", br.UserDomain()),
	)
}

// LogAuditAttrs returns slog attributes including the booker's name and email.
//
// # Security Warning
//
// Route these records to storage with appropriate access controls.
func (br *BookingRecord) LogAuditAttrs() []slog.Attr {
	attrs := append(br.commonAttrs(),
		slog.String("name", br.Name),
		slog.String("email", br.Email),
	)
	if br.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", br.SpanID))
	}
	return attrs
}

// AuditLogger writes one structured record per booking attempt.
type AuditLogger struct {
	logger       *slog.Logger
	includePII   bool
	enabled      bool
	successLevel slog.Level
}

// NewAuditLogger creates an enabled AuditLogger that does not include PII.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
// An unknown LogLevel falls back to info.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	level, err := logging.ParseLevel(config.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return &AuditLogger{
		logger:       logger.With(slog.String("component", "audit")),
		includePII:   config.IncludePII,
		enabled:      config.Enabled,
		successLevel: level,
	}
}

// LogBooking writes br. Successful bookings are written at the configured
// level, rejected or invalid ones at warn, everything else at error.
func (al *AuditLogger) LogBooking(ctx context.Context, br *BookingRecord) {
	if al == nil || !al.enabled || br == nil {
		return
	}

	var attrs []slog.Attr
	if al.includePII {
		attrs = br.LogAuditAttrs()
	} else {
		attrs = br.LogAttrs()
	}

	level := slog.LevelError
	switch br.Status {
	case StatusSuccess:
		level = al.successLevel
	case StatusInvalid, StatusRejected:
		level = slog.LevelWarn
	}

	al.logger.LogAttrs(ctx, level, "booking_"+strings.ToLower(br.Status), attrs...)
}
