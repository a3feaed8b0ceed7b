package clock

import "time"

// Clock supplies the current time. The scheduling engine takes it as a
// dependency so slot availability stays deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns a Clock backed by the wall clock, normalized to UTC.
func System() Clock { return systemClock{} }

// NormalizeUTC converts t to the reference timezone. Every timestamp must
// pass through here before persistence or comparison.
func NormalizeUTC(t time.Time) time.Time { return t.UTC() }

// Overlaps reports whether the half-open intervals [startA, endA) and
// [startB, endB) intersect. An interval ending exactly when another begins
// does not overlap. All conflict checks in the engine go through this.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && endA.After(startB)
}

// DayBounds returns the [midnight, next midnight) UTC window containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

// SameDay reports whether a and b fall on the same UTC calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
