package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/careclinic/scheduling/internal/clock"
)

func ts(hour, minute int) time.Time {
	return time.Date(2026, time.March, 10, hour, minute, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		startA, endA, startB, endB time.Time
		want                       bool
	}{
		{"identical", ts(10, 0), ts(10, 30), ts(10, 0), ts(10, 30), true},
		{"partial overlap", ts(10, 0), ts(11, 0), ts(10, 30), ts(11, 30), true},
		{"containment", ts(10, 0), ts(12, 0), ts(10, 30), ts(11, 0), true},
		{"touching at boundary", ts(10, 0), ts(10, 30), ts(10, 30), ts(11, 0), false},
		{"touching at boundary reversed", ts(10, 30), ts(11, 0), ts(10, 0), ts(10, 30), false},
		{"disjoint", ts(9, 0), ts(9, 30), ts(14, 0), ts(14, 30), false},
		{"one minute over", ts(10, 0), ts(10, 31), ts(10, 30), ts(11, 0), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, clock.Overlaps(tc.startA, tc.endA, tc.startB, tc.endB))
			// overlap is symmetric
			assert.Equal(t, tc.want, clock.Overlaps(tc.startB, tc.endB, tc.startA, tc.endA))
		})
	}
}

func TestNormalizeUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	local := time.Date(2026, time.March, 10, 5, 0, 0, 0, est)

	got := clock.NormalizeUTC(local)

	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, got.Equal(local))
	assert.Equal(t, 10, got.Hour())
}

func TestDayBounds(t *testing.T) {
	start, end := clock.DayBounds(ts(14, 37))

	assert.Equal(t, time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestDayBoundsNonUTCInput(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	// 22:00 EST on March 10 is already March 11 in UTC.
	start, _ := clock.DayBounds(time.Date(2026, time.March, 10, 22, 0, 0, 0, est))

	assert.Equal(t, time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC), start)
}

func TestSameDay(t *testing.T) {
	assert.True(t, clock.SameDay(ts(0, 0), ts(23, 59)))
	assert.False(t, clock.SameDay(ts(23, 59), ts(23, 59).Add(time.Minute)))

	est := time.FixedZone("EST", -5*3600)
	// Same wall-clock date in EST, different UTC dates.
	a := time.Date(2026, time.March, 10, 8, 0, 0, 0, est)
	b := time.Date(2026, time.March, 10, 22, 0, 0, 0, est)
	assert.False(t, clock.SameDay(a, b))
}

func TestSystemClockIsUTC(t *testing.T) {
	now := clock.System().Now()
	assert.Equal(t, time.UTC, now.Location())
}
