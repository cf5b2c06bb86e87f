package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConferenceRequest asks the calendar to provision a video meeting for the event.
type ConferenceRequest struct {
	RequestID string
}

// EventDraft is a self-contained description of the event to create.
type EventDraft struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string
	Conference  *ConferenceRequest
}

// Confirmation is what the calendar returns after creating an event.
type Confirmation struct {
	EventID        string `json:"eventId"`
	HTMLLink       string `json:"htmlLink"`
	ConferenceLink string `json:"hangoutLink,omitempty"`
}

// NewRequestID returns a fresh conferencing request identifier.
// Uniqueness is enforced by the calendar, not here.
func NewRequestID(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "-" + uuid.NewString()
}

// BuildEvent turns a validated request into an event draft. The start is the
// local (date, time) in cfg.Location and the event lasts one slot.
// requestID is only used when the booking is online.
func BuildEvent(cfg Config, req Request, requestID string) (EventDraft, error) {
	d, err := ParseDate(req.Date)
	if err != nil {
		return EventDraft{}, err
	}
	clk, err := ParseClock(req.Time)
	if err != nil {
		return EventDraft{}, err
	}

	y, m, day := d.Date()
	start := clk.On(y, m, day, cfg.Location)

	mode := req.Mode
	if mode == "" {
		mode = ModeOnline
	}

	draft := EventDraft{
		Summary:     fmt.Sprintf("%s — %s", cfg.SummaryPrefix, req.Name),
		Description: fmt.Sprintf("Foglaló: %s <%s>\nMód: %s", req.Name, req.Email, mode),
		Start:       start,
		End:         start.Add(cfg.SlotLength),
		TimeZone:    cfg.TimeZone(),
		Attendees:   []string{req.Email},
	}
	if req.Online() {
		draft.Conference = &ConferenceRequest{RequestID: requestID}
	}
	return draft, nil
}
