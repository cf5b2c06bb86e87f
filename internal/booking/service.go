package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/consultcal/internal/instrumentation"
	"github.com/teemow/consultcal/internal/logging"
)

// Calendar is the external calendar the service reads availability from and
// books events on.
type Calendar interface {
	// FetchBusyIntervals returns the busy intervals of calendarID that overlap
	// [timeMin, timeMax).
	FetchBusyIntervals(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]Interval, error)

	// SubmitEvent creates the drafted event on calendarID.
	SubmitEvent(ctx context.Context, calendarID string, draft EventDraft) (Confirmation, error)
}

// Recorder receives booking metrics. *instrumentation.Metrics implements it.
type Recorder interface {
	RecordSlotQuery(ctx context.Context, status string, offered int)
	RecordBooking(ctx context.Context, mode, status string)
}

// Service answers availability queries and books consultations.
type Service struct {
	cfg       Config
	calendar  Calendar
	logger    *slog.Logger
	recorder  Recorder
	audit     *instrumentation.AuditLogger
	requestID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithAuditLogger writes one audit record per booking attempt.
func WithAuditLogger(a *instrumentation.AuditLogger) Option {
	return func(s *Service) {
		s.audit = a
	}
}

// WithRequestIDFunc overrides how conferencing request identifiers are generated.
func WithRequestIDFunc(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.requestID = fn
		}
	}
}

// NewService creates a Service for cfg backed by cal.
func NewService(cfg Config, cal Calendar, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid booking config: %w", err)
	}
	if cal == nil {
		return nil, fmt.Errorf("calendar cannot be nil")
	}

	s := &Service{
		cfg:      cfg,
		calendar: cal,
		logger:   slog.Default(),
	}
	s.requestID = func() string { return NewRequestID(cfg.RequestIDPrefix) }
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.WithCalendar(s.logger, cfg.CalendarID)
	return s, nil
}

// Config returns the configuration the service was built with.
func (s *Service) Config() Config {
	return s.cfg
}

// AvailableSlots returns the free slot labels for date.
func (s *Service) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	ctx, span := instrumentation.StartSpan(ctx, "booking.slots",
		instrumentation.NewSpanAttributeBuilder().WithCalendar(s.cfg.CalendarID).WithDate(date).Build()...)
	defer span.End()

	logger := logging.WithOperation(s.logger, "booking.slots").With(logging.Date(date))

	start, end, err := WindowBounds(s.cfg, date)
	if err != nil {
		s.recordSlots(ctx, instrumentation.StatusInvalid, 0)
		instrumentation.SetSpanError(span, err)
		return nil, err
	}

	busy, err := s.calendar.FetchBusyIntervals(ctx, s.cfg.CalendarID, start, end)
	if err != nil {
		s.recordSlots(ctx, instrumentation.StatusError, 0)
		instrumentation.SetSpanError(span, err)
		logger.Error("failed to fetch busy intervals", logging.Err(err))
		return nil, fmt.Errorf("fetch busy intervals for %s: %w", date, err)
	}

	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().WithBusyCount(len(busy)).Build()...)

	slots, err := ComputeSlots(s.cfg, date, busy)
	if err != nil {
		s.recordSlots(ctx, instrumentation.StatusInvalid, 0)
		instrumentation.SetSpanError(span, err)
		return nil, err
	}

	s.recordSlots(ctx, instrumentation.StatusSuccess, len(slots))
	instrumentation.SetSpanSuccess(span)
	logger.Debug("computed slots", "busy", len(busy), "free", len(slots))
	return slots, nil
}

// Book validates raw, builds the event and submits it to the calendar.
func (s *Service) Book(ctx context.Context, raw RawRequest) (conf Confirmation, err error) {
	ctx, span := instrumentation.StartSpan(ctx, "booking.book",
		instrumentation.NewSpanAttributeBuilder().WithCalendar(s.cfg.CalendarID).Build()...)
	defer span.End()

	logger := logging.WithOperation(s.logger, "booking.book")
	record := instrumentation.NewBookingRecord(s.cfg.CalendarID).
		WithSlot(raw.Date, raw.Time, raw.Mode).
		WithBooker(raw.Name, raw.Email).
		WithSpanContext(ctx)
	status := instrumentation.StatusError
	defer func() {
		s.recordBooking(ctx, record.Mode, status)
		s.audit.LogBooking(ctx, record.Complete(status, conf.EventID, err))
	}()

	req, err := Validate(raw)
	if err != nil {
		status = instrumentation.StatusInvalid
		instrumentation.SetSpanError(span, err)
		logger.Info("rejected booking request", logging.Err(err))
		return Confirmation{}, err
	}
	record.WithSlot(req.Date, req.Time, req.Mode)
	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().WithDate(req.Date).WithMode(req.Mode).Build()...)
	logger = logger.With(logging.Date(req.Date), logging.Mode(req.Mode), logging.UserHash(req.Email))

	draft, err := BuildEvent(s.cfg, req, s.requestID())
	if err != nil {
		status = instrumentation.StatusInvalid
		instrumentation.SetSpanError(span, err)
		return Confirmation{}, err
	}

	conf, err = s.calendar.SubmitEvent(ctx, s.cfg.CalendarID, draft)
	if err != nil {
		if errors.Is(err, ErrCollaboratorRejected) {
			status = instrumentation.StatusRejected
		}
		instrumentation.SetSpanError(span, err)
		logger.Error("failed to submit event", logging.Err(err), "transient", IsTransient(err))
		return Confirmation{}, fmt.Errorf("submit event: %w", err)
	}

	status = instrumentation.StatusSuccess
	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().WithEventID(conf.EventID).Build()...)
	instrumentation.SetSpanSuccess(span)
	logger.Info("booked consultation", "event_id", conf.EventID, "time", req.Time, logging.Domain(req.Email))
	return conf, nil
}

func (s *Service) recordSlots(ctx context.Context, status string, offered int) {
	if s.recorder != nil {
		s.recorder.RecordSlotQuery(ctx, status, offered)
	}
}

func (s *Service) recordBooking(ctx context.Context, mode, status string) {
	if s.recorder == nil {
		return
	}
	if mode == "" {
		mode = ModeOnline
	}
	s.recorder.RecordBooking(ctx, mode, status)
}
