package calendar

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/consultcal/internal/booking"
	"github.com/teemow/consultcal/internal/google"
	"github.com/teemow/consultcal/internal/instrumentation"
)

// SendUpdatesAll notifies every attendee when an event is created.
const SendUpdatesAll = "all"

// Client wraps the Google Calendar service and implements booking.Calendar.
type Client struct {
	svc         *calendar.Service
	metrics     *instrumentation.Metrics
	sendUpdates string
}

var _ booking.Calendar = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithMetrics records every Google API call on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithSendUpdates sets the sendUpdates policy for inserted events
// ("all", "externalOnly" or "none"). The default is "all".
func WithSendUpdates(policy string) Option {
	return func(c *Client) {
		if policy != "" {
			c.sendUpdates = policy
		}
	}
}

// NewClient creates a Calendar client authenticated by the given token provider.
func NewClient(ctx context.Context, tokenProvider google.TokenProvider, opts ...Option) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	ts, err := tokenProvider.TokenSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token source: %w", err)
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(google.HTTPClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return NewClientWithService(svc, opts...), nil
}

// NewClientWithService wraps an already configured Calendar service.
func NewClientWithService(svc *calendar.Service, opts ...Option) *Client {
	c := &Client{
		svc:         svc,
		sendUpdates: SendUpdatesAll,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchBusyIntervals queries free/busy information for calendarID within
// [timeMin, timeMax). A calendar missing from the response has no busy time.
func (c *Client) FetchBusyIntervals(ctx context.Context, calendarID string, timeMin, timeMax time.Time) (_ []booking.Interval, err error) {
	ctx, finish := c.observe(ctx, instrumentation.OperationFreeBusy, calendarID)
	defer func() { finish(err) }()

	query := &calendar.FreeBusyRequest{
		TimeMin: timeMin.Format(time.RFC3339),
		TimeMax: timeMax.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: calendarID}},
	}

	result, err := c.svc.Freebusy.Query(query).Context(ctx).Do()
	if err != nil {
		return nil, classify(instrumentation.OperationFreeBusy, err)
	}

	cal, ok := result.Calendars[calendarID]
	if !ok {
		return []booking.Interval{}, nil
	}
	if len(cal.Errors) > 0 {
		return nil, freeBusyError(calendarID, cal.Errors)
	}

	busy, err := toIntervals(cal.Busy)
	if err != nil {
		return nil, booking.Unavailable(instrumentation.OperationFreeBusy, false, err)
	}
	return busy, nil
}

// SubmitEvent inserts the drafted event on calendarID. Attendees are
// notified according to the sendUpdates policy and a video conference is
// requested when the draft asks for one.
func (c *Client) SubmitEvent(ctx context.Context, calendarID string, draft booking.EventDraft) (_ booking.Confirmation, err error) {
	ctx, finish := c.observe(ctx, instrumentation.OperationInsert, calendarID)
	defer func() { finish(err) }()

	call := c.svc.Events.Insert(calendarID, toEvent(draft)).
		ConferenceDataVersion(1).
		SendUpdates(c.sendUpdates).
		Context(ctx)

	created, err := call.Do()
	if err != nil {
		return booking.Confirmation{}, classify(instrumentation.OperationInsert, err)
	}

	return toConfirmation(created), nil
}

// observe starts a client span and returns a func that ends it and records
// the call's metrics.
func (c *Client) observe(ctx context.Context, operation, calendarID string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, operation,
		attribute.String(instrumentation.SpanAttrCalendar, calendarID))

	return ctx, func(err error) {
		defer span.End()

		status := instrumentation.StatusSuccess
		if err != nil {
			status = statusOf(err)
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, operation, status, time.Since(start))
	}
}
