package booking

import (
	"fmt"
	"time"

	// Embedded zone data so DefaultTimeZone loads on hosts without a tz database.
	_ "time/tzdata"
)

const (
	// DefaultTimeZone is the IANA zone the working window is expressed in.
	DefaultTimeZone = "Europe/Budapest"

	// DefaultSlotLength is the length of one bookable slot.
	DefaultSlotLength = 30 * time.Minute

	// DateLayout is the accepted calendar date format.
	DateLayout = "2006-01-02"

	// ClockLayout is the format of slot labels and booking start times.
	ClockLayout = "15:04"
)

// Clock is a local wall-clock time of day without a date.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses an "HH:mm" string.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// String formats the clock as zero-padded "HH:mm".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c Clock) minutes() int {
	return c.Hour*60 + c.Minute
}

// On combines the clock with a calendar date in loc.
func (c Clock) On(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, c.Hour, c.Minute, 0, 0, loc)
}

// Config is the explicit configuration of the booking core.
type Config struct {
	// CalendarID identifies the calendar slots are computed for and events are booked on.
	CalendarID string

	// Location is the fixed timezone of the working window.
	Location *time.Location

	// DayStart and DayEnd bound the daily working window in local time.
	DayStart Clock
	DayEnd   Clock

	// SlotLength is the length of a single slot.
	SlotLength time.Duration

	// SummaryPrefix is prepended to the requester's name in the event summary.
	SummaryPrefix string

	// RequestIDPrefix is prepended to conferencing request identifiers.
	RequestIDPrefix string
}

// DefaultConfig returns the 09:00-17:00 Europe/Budapest window with 30 minute slots.
func DefaultConfig() Config {
	loc, err := time.LoadLocation(DefaultTimeZone)
	if err != nil {
		panic(fmt.Sprintf("load %s: %v", DefaultTimeZone, err))
	}
	return Config{
		CalendarID:      "primary",
		Location:        loc,
		DayStart:        Clock{Hour: 9},
		DayEnd:          Clock{Hour: 17},
		SlotLength:      DefaultSlotLength,
		SummaryPrefix:   "AIRM konzultáció",
		RequestIDPrefix: "airm",
	}
}

// TimeZone returns the name of the configured location.
func (c Config) TimeZone() string {
	if c.Location == nil {
		return "UTC"
	}
	return c.Location.String()
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.CalendarID == "" {
		return fmt.Errorf("calendar ID is required")
	}
	if c.Location == nil {
		return fmt.Errorf("location is required")
	}
	if c.SlotLength <= 0 {
		return fmt.Errorf("slot length must be positive, got %s", c.SlotLength)
	}
	for name, clk := range map[string]Clock{"day start": c.DayStart, "day end": c.DayEnd} {
		if clk.Hour < 0 || clk.Hour > 24 || clk.Minute < 0 || clk.Minute > 59 || (clk.Hour == 24 && clk.Minute != 0) {
			return fmt.Errorf("%s %s is not a valid time of day", name, clk)
		}
	}
	if c.DayStart.minutes() >= c.DayEnd.minutes() {
		return fmt.Errorf("day start %s must be before day end %s", c.DayStart, c.DayEnd)
	}
	return nil
}
