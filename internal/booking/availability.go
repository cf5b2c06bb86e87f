package booking

import (
	"fmt"
	"time"
)

// Interval is a busy period reported by the calendar. Start and End are
// absolute instants; the list handed to ComputeSlots may be unordered and
// overlapping.
type Interval struct {
	Start time.Time
	End   time.Time
}

// overlaps reports whether [start, end) intersects the interval.
// Touching boundaries do not overlap.
func (iv Interval) overlaps(start, end time.Time) bool {
	return start.Before(iv.End) && end.After(iv.Start)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(date string) (time.Time, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return d, nil
}

// WindowBounds returns the absolute instants of the working window on date.
// The bounds are built from local wall-clock times, so a daylight-saving
// transition on that day changes the window's absolute length.
// An invalid cfg is reported as an error.
func WindowBounds(cfg Config, date string) (time.Time, time.Time, error) {
	if err := cfg.Validate(); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid config: %w", err)
	}
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	y, m, day := d.Date()
	return cfg.DayStart.On(y, m, day, cfg.Location), cfg.DayEnd.On(y, m, day, cfg.Location), nil
}

// ComputeSlots returns the "HH:mm" labels of every free slot inside the
// working window on date, in chronological order.
//
// A slot [t, t+SlotLength) is free when it does not overlap any busy
// interval. A fully booked day yields an empty, non-nil slice.
func ComputeSlots(cfg Config, date string, busy []Interval) ([]string, error) {
	start, end, err := WindowBounds(cfg, date)
	if err != nil {
		return nil, err
	}

	slots := make([]string, 0, int(end.Sub(start)/cfg.SlotLength))
	seen := make(map[string]struct{})
	for t := start; t.Before(end); t = t.Add(cfg.SlotLength) {
		slotEnd := t.Add(cfg.SlotLength)
		if overlapsAny(t, slotEnd, busy) {
			continue
		}
		label := t.In(cfg.Location).Format(ClockLayout)
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		slots = append(slots, label)
	}
	return slots, nil
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if b.overlaps(start, end) {
			return true
		}
	}
	return false
}
