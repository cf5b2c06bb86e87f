package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func budapest(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(DefaultTimeZone)
	require.NoError(t, err)
	return loc
}

func at(t *testing.T, date, clock string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, budapest(t))
	require.NoError(t, err)
	return ts
}

func fullDay() []string {
	return []string{
		"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00", "12:30",
		"13:00", "13:30", "14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
	}
}

func TestComputeSlots_EmptyBusy(t *testing.T) {
	cfg := DefaultConfig()

	for _, date := range []string{"2025-06-02", "2025-01-15", "2025-03-10", "2024-02-29"} {
		t.Run(date, func(t *testing.T) {
			slots, err := ComputeSlots(cfg, date, nil)
			require.NoError(t, err)
			assert.Equal(t, fullDay(), slots)
		})
	}
}

func TestComputeSlots_FullyCovered(t *testing.T) {
	cfg := DefaultConfig()
	date := "2025-06-02"

	tests := []struct {
		name string
		busy []Interval
	}{
		{
			name: "exact window",
			busy: []Interval{{Start: at(t, date, "09:00"), End: at(t, date, "17:00")}},
		},
		{
			name: "wider than window",
			busy: []Interval{{Start: at(t, date, "00:00"), End: at(t, date, "23:59")}},
		},
		{
			name: "pieces out of order",
			busy: []Interval{
				{Start: at(t, date, "13:00"), End: at(t, date, "17:00")},
				{Start: at(t, date, "09:00"), End: at(t, date, "11:00")},
				{Start: at(t, date, "10:45"), End: at(t, date, "13:15")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := ComputeSlots(cfg, date, tt.busy)
			require.NoError(t, err)
			assert.NotNil(t, slots)
			assert.Empty(t, slots)
		})
	}
}

func TestComputeSlots_BoundaryTouch(t *testing.T) {
	cfg := DefaultConfig()
	date := "2025-06-02"

	// Busy exactly equal to the 10:00 slot.
	busy := []Interval{{Start: at(t, date, "10:00"), End: at(t, date, "10:30")}}

	slots, err := ComputeSlots(cfg, date, busy)
	require.NoError(t, err)
	assert.NotContains(t, slots, "10:00")
	assert.Contains(t, slots, "09:30")
	assert.Contains(t, slots, "10:30")
	assert.Len(t, slots, 15)
}

func TestComputeSlots_PartialOverlap(t *testing.T) {
	cfg := DefaultConfig()
	date := "2025-06-02"

	tests := []struct {
		name     string
		busy     []Interval
		excluded []string
	}{
		{
			name:     "starts mid slot",
			busy:     []Interval{{Start: at(t, date, "11:10"), End: at(t, date, "11:40")}},
			excluded: []string{"11:00", "11:30"},
		},
		{
			name:     "one minute",
			busy:     []Interval{{Start: at(t, date, "14:29"), End: at(t, date, "14:30")}},
			excluded: []string{"14:00"},
		},
		{
			name:     "ends at window start",
			busy:     []Interval{{Start: at(t, date, "08:00"), End: at(t, date, "09:00")}},
			excluded: nil,
		},
		{
			name:     "starts at window end",
			busy:     []Interval{{Start: at(t, date, "17:00"), End: at(t, date, "18:00")}},
			excluded: nil,
		},
		{
			name: "utc instants",
			busy: []Interval{{
				Start: time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC),
				End:   time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
			}},
			excluded: []string{"09:00", "09:30"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := ComputeSlots(cfg, date, tt.busy)
			require.NoError(t, err)
			assert.Len(t, slots, 16-len(tt.excluded))
			for _, label := range tt.excluded {
				assert.NotContains(t, slots, label)
			}
		})
	}
}

func TestComputeSlots_OrderedAndDistinct(t *testing.T) {
	cfg := DefaultConfig()
	date := "2025-06-02"
	busy := []Interval{
		{Start: at(t, date, "12:00"), End: at(t, date, "12:30")},
		{Start: at(t, date, "12:00"), End: at(t, date, "12:30")},
		{Start: at(t, date, "09:15"), End: at(t, date, "09:45")},
	}

	slots, err := ComputeSlots(cfg, date, busy)
	require.NoError(t, err)

	seen := map[string]bool{}
	for i, label := range slots {
		assert.False(t, seen[label], "duplicate label %s", label)
		seen[label] = true
		if i > 0 {
			assert.Less(t, slots[i-1], label)
		}
		ts, err := time.Parse(ClockLayout, label)
		require.NoError(t, err)
		assert.Zero(t, ts.Minute()%30, "label %s is not on a slot boundary", label)
	}
}

func TestComputeSlots_Idempotent(t *testing.T) {
	cfg := DefaultConfig()
	date := "2025-06-02"
	busy := []Interval{{Start: at(t, date, "13:00"), End: at(t, date, "14:00")}}

	first, err := ComputeSlots(cfg, date, busy)
	require.NoError(t, err)
	second, err := ComputeSlots(cfg, date, busy)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeSlots_InvalidDate(t *testing.T) {
	cfg := DefaultConfig()

	for _, date := range []string{"", "tomorrow", "2025-13-01", "2025-02-30", "02/06/2025"} {
		t.Run(date, func(t *testing.T) {
			slots, err := ComputeSlots(cfg, date, nil)
			assert.Nil(t, slots)
			assert.True(t, errors.Is(err, ErrInvalidDate), "got %v", err)
		})
	}
}

func TestComputeSlots_DaylightSaving(t *testing.T) {
	t.Run("2025-03-10 uses local wall clock", func(t *testing.T) {
		cfg := DefaultConfig()
		start, end, err := WindowBounds(cfg, "2025-03-10")
		require.NoError(t, err)

		slots, err := ComputeSlots(cfg, "2025-03-10", nil)
		require.NoError(t, err)
		assert.Len(t, slots, int(end.Sub(start)/cfg.SlotLength))
		assert.Equal(t, "09:00", slots[0])
	})

	t.Run("window bounds follow offset change", func(t *testing.T) {
		cfg := DefaultConfig()
		winter, _, err := WindowBounds(cfg, "2025-03-29")
		require.NoError(t, err)
		summer, _, err := WindowBounds(cfg, "2025-03-30")
		require.NoError(t, err)

		assert.Equal(t, 8, winter.UTC().Hour())
		assert.Equal(t, 7, summer.UTC().Hour())
	})

	t.Run("spring forward inside window", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DayStart = Clock{Hour: 1}
		cfg.DayEnd = Clock{Hour: 5}

		slots, err := ComputeSlots(cfg, "2025-03-30", nil)
		require.NoError(t, err)
		// 02:00-03:00 does not exist that night.
		assert.Equal(t, []string{"01:00", "01:30", "03:00", "03:30", "04:00", "04:30"}, slots)
	})

	t.Run("fall back inside window", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DayStart = Clock{Hour: 1}
		cfg.DayEnd = Clock{Hour: 4}

		start, end, err := WindowBounds(cfg, "2025-10-26")
		require.NoError(t, err)
		assert.Equal(t, 4*time.Hour, end.Sub(start))

		slots, err := ComputeSlots(cfg, "2025-10-26", nil)
		require.NoError(t, err)
		// 02:00-03:00 happens twice; each label is reported once.
		assert.Equal(t, []string{"01:00", "01:30", "02:00", "02:30", "03:00", "03:30"}, slots)
	})
}

func TestComputeSlots_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero slot length", func(c *Config) { c.SlotLength = 0 }, "slot length"},
		{"nil location", func(c *Config) { c.Location = nil }, "location"},
		{"inverted window", func(c *Config) { c.DayStart, c.DayEnd = c.DayEnd, c.DayStart }, "must be before"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			slots, err := ComputeSlots(cfg, "2025-06-02", nil)
			assert.Nil(t, slots)
			assert.ErrorContains(t, err, tt.wantErr)
			assert.False(t, errors.Is(err, ErrInvalidDate))

			_, _, err = WindowBounds(cfg, "2025-06-02")
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestWindowBounds(t *testing.T) {
	cfg := DefaultConfig()

	start, end, err := WindowBounds(cfg, "2025-06-02")
	require.NoError(t, err)
	assert.True(t, start.Equal(at(t, "2025-06-02", "09:00")))
	assert.True(t, end.Equal(at(t, "2025-06-02", "17:00")))

	_, _, err = WindowBounds(cfg, "nope")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
