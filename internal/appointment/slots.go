package appointment

import (
	"time"

	"github.com/careclinic/scheduling/internal/clock"
)

// TimeSlot is one candidate start time offered during booking.
type TimeSlot struct {
	Start     time.Time
	Label     string
	Available bool
}

// DaySlots groups a day's slots for presentation: morning holds starts
// before noon, afternoon the rest. The split is cosmetic, not a
// scheduling rule.
type DaySlots struct {
	Morning   []TimeSlot
	Afternoon []TimeSlot
}

type interval struct {
	start, end time.Time
}

// liveIntervals converts live appointments into normalized occupied
// intervals. Terminal appointments never occupy calendar space.
func liveIntervals(appts []Appointment) []interval {
	out := make([]interval, 0, len(appts))
	for i := range appts {
		a := &appts[i]
		if !a.Status.IsLive() {
			continue
		}
		out = append(out, interval{
			start: clock.NormalizeUTC(a.Start()),
			end:   clock.NormalizeUTC(a.End()),
		})
	}
	return out
}

// buildDaySlots enumerates candidate starts between openHour and closeHour,
// stepping by duration. A slot is only offered when its whole interval fits
// before closing. It is unavailable when it overlaps a busy interval, or
// when the target day is today and the slot has already started.
func buildDaySlots(day time.Time, duration time.Duration, openHour, closeHour int, busy []interval, now time.Time) DaySlots {
	dayStart, _ := clock.DayBounds(day)
	openAt := dayStart.Add(time.Duration(openHour) * time.Hour)
	closeAt := dayStart.Add(time.Duration(closeHour) * time.Hour)
	now = clock.NormalizeUTC(now)

	var slots DaySlots
	for start := openAt; !start.Add(duration).After(closeAt); start = start.Add(duration) {
		end := start.Add(duration)

		available := true
		if clock.SameDay(day, now) && !start.After(now) {
			available = false
		}
		if available {
			for _, b := range busy {
				if clock.Overlaps(start, end, b.start, b.end) {
					available = false
					break
				}
			}
		}

		slot := TimeSlot{
			Start:     start,
			Label:     start.Format("3:04 PM"),
			Available: available,
		}
		if start.Hour() < 12 {
			slots.Morning = append(slots.Morning, slot)
		} else {
			slots.Afternoon = append(slots.Afternoon, slot)
		}
	}

	return slots
}
