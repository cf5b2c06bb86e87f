package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/teemow/consultcal/internal/booking"
	"github.com/teemow/consultcal/internal/instrumentation"
)

// Memory is an in-process booking.Calendar. Booked events count as busy
// time for later availability queries. It is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	busy   map[string][]booking.Interval
	events map[string][]booking.EventDraft
	nextID int

	fetchErr  error
	submitErr error
}

var _ booking.Calendar = (*Memory)(nil)

// NewMemory returns an empty in-memory calendar.
func NewMemory() *Memory {
	return &Memory{
		busy:   make(map[string][]booking.Interval),
		events: make(map[string][]booking.EventDraft),
	}
}

// AddBusy marks [start, end) as busy on calendarID.
func (m *Memory) AddBusy(calendarID string, start, end time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy[calendarID] = append(m.busy[calendarID], booking.Interval{Start: start, End: end})
}

// FailFetch makes subsequent FetchBusyIntervals calls return err. Pass nil to reset.
func (m *Memory) FailFetch(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchErr = err
}

// FailSubmit makes subsequent SubmitEvent calls return err. Pass nil to reset.
func (m *Memory) FailSubmit(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitErr = err
}

// Events returns a copy of the drafts submitted to calendarID.
func (m *Memory) Events(calendarID string) []booking.EventDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]booking.EventDraft(nil), m.events[calendarID]...)
}

// FetchBusyIntervals returns stored busy intervals overlapping [timeMin, timeMax).
func (m *Memory) FetchBusyIntervals(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]booking.Interval, error) {
	if err := ctx.Err(); err != nil {
		return nil, booking.Unavailable(instrumentation.OperationFreeBusy, false, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fetchErr != nil {
		return nil, m.fetchErr
	}

	out := []booking.Interval{}
	for _, iv := range m.busy[calendarID] {
		if iv.Start.Before(timeMax) && iv.End.After(timeMin) {
			out = append(out, iv)
		}
	}
	return out, nil
}

// SubmitEvent records the draft and blocks its time range.
func (m *Memory) SubmitEvent(ctx context.Context, calendarID string, draft booking.EventDraft) (booking.Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return booking.Confirmation{}, booking.Unavailable(instrumentation.OperationInsert, false, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submitErr != nil {
		return booking.Confirmation{}, m.submitErr
	}

	m.nextID++
	id := fmt.Sprintf("mem-%d", m.nextID)
	m.events[calendarID] = append(m.events[calendarID], draft)
	m.busy[calendarID] = append(m.busy[calendarID], booking.Interval{Start: draft.Start, End: draft.End})

	conf := booking.Confirmation{
		EventID:  id,
		HTMLLink: "memory://" + calendarID + "/" + id,
	}
	if draft.Conference != nil {
		conf.ConferenceLink = "memory://meet/" + draft.Conference.RequestID
	}
	return conf, nil
}
