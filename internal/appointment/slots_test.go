package appointment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careclinic/scheduling/internal/appointment"
)

func allSlots(d appointment.DaySlots) []appointment.TimeSlot {
	return append(append([]appointment.TimeSlot{}, d.Morning...), d.Afternoon...)
}

func slotAt(t *testing.T, d appointment.DaySlots, start time.Time) appointment.TimeSlot {
	t.Helper()
	for _, s := range allSlots(d) {
		if s.Start.Equal(start) {
			return s
		}
	}
	t.Fatalf("no slot starting at %s", start)
	return appointment.TimeSlot{}
}

func TestAvailableSlotsFullDayGrid(t *testing.T) {
	f := newFixture(testDay.Add(-24 * time.Hour))

	slots, err := f.svc.AvailableSlots(context.Background(), testDay, 30)
	require.NoError(t, err)

	// 09:00 through 11:30 in the morning, 12:00 through 16:30 after.
	assert.Len(t, slots.Morning, 6)
	assert.Len(t, slots.Afternoon, 10)

	all := allSlots(slots)
	assert.Equal(t, at(9, 0), all[0].Start)
	assert.Equal(t, at(16, 30), all[len(all)-1].Start)
	for _, s := range all {
		assert.True(t, s.Available, "slot %s", s.Label)
	}
}

func TestAvailableSlotsNoSlotAtClosing(t *testing.T) {
	f := newFixture(testDay.Add(-24 * time.Hour))

	slots, err := f.svc.AvailableSlots(context.Background(), testDay, 30)
	require.NoError(t, err)

	// A 17:00 start would run past closing, so the grid ends at 16:30.
	for _, s := range allSlots(slots) {
		assert.False(t, s.Start.Add(30*time.Minute).After(at(17, 0)), "slot %s runs past closing", s.Label)
		assert.NotEqual(t, at(17, 0), s.Start)
	}
}

func TestAvailableSlotsBookedIntervalBlocksOnlyItself(t *testing.T) {
	f := newFixture(testDay.Add(-24 * time.Hour))
	patientID := f.store.addPatient()

	f.store.put(appointment.Appointment{
		PatientID:       patientID,
		ScheduledStart:  at(10, 0),
		DurationMinutes: 30,
		Status:          appointment.StatusScheduled,
		CreatedBy:       patientID,
	})

	slots, err := f.svc.AvailableSlots(context.Background(), testDay, 30)
	require.NoError(t, err)

	assert.False(t, slotAt(t, slots, at(10, 0)).Available)
	assert.True(t, slotAt(t, slots, at(9, 30)).Available)
	assert.True(t, slotAt(t, slots, at(10, 30)).Available)
}

func TestAvailableSlotsLongerBookingShadowsGrid(t *testing.T) {
	f := newFixture(testDay.Add(-24 * time.Hour))
	patientID := f.store.addPatient()

	// A 60-minute visit at 10:00 blocks both 30-minute slots under it.
	f.store.put(appointment.Appointment{
		PatientID:       patientID,
		ScheduledStart:  at(10, 0),
		DurationMinutes: 60,
		Status:          appointment.StatusPending,
		CreatedBy:       patientID,
	})

	slots, err := f.svc.AvailableSlots(context.Background(), testDay, 30)
	require.NoError(t, err)

	assert.True(t, slotAt(t, slots, at(9, 30)).Available)
	assert.False(t, slotAt(t, slots, at(10, 0)).Available)
	assert.False(t, slotAt(t, slots, at(10, 30)).Available)
	assert.True(t, slotAt(t, slots, at(11, 0)).Available)
}

func TestAvailableSlotsPastSlotsUnavailableToday(t *testing.T) {
	f := newFixture(at(11, 0))

	slots, err := f.svc.AvailableSlots(context.Background(), testDay, 30)
	require.NoError(t, err)

	// At 11:00, slots up to and including the 11:00 start are gone; 11:30
	// is still offered.
	assert.False(t, slotAt(t, slots, at(10, 0)).Available)
	assert.False(t, slotAt(t, slots, at(10, 30)).Available)
	assert.False(t, slotAt(t, slots, at(11, 0)).Available)
	assert.True(t, slotAt(t, slots, at(11, 30)).Available)
}

func TestAvailableSlotsFutureDayUnaffectedByClock(t *testing.T) {
	f := newFixture(at(11, 0))

	slots, err := f.svc.AvailableSlots(context.Background(), testDay.Add(24*time.Hour), 30)
	require.NoError(t, err)

	for _, s := range allSlots(slots) {
		assert.True(t, s.Available, "slot %s", s.Label)
	}
}

func TestAvailableSlotsIgnoreTerminalAppointments(t *testing.T) {
	f := newFixture(testDay.Add(-24 * time.Hour))
	patientID := f.store.addPatient()

	for i, status := range []appointment.Status{
		appointment.StatusCompleted,
		appointment.StatusCancelled,
		appointment.StatusNoShow,
	} {
		f.store.put(appointment.Appointment{
			PatientID:       patientID,
			ScheduledStart:  at(9+i, 0),
			DurationMinutes: 30,
			Status:          status,
			CreatedBy:       patientID,
		})
	}

	slots, err := f.svc.AvailableSlots(context.Background(), testDay, 30)
	require.NoError(t, err)

	for _, s := range allSlots(slots) {
		assert.True(t, s.Available, "slot %s", s.Label)
	}
}

func TestAvailableSlotsIdempotent(t *testing.T) {
	f := newFixture(testDay.Add(-24 * time.Hour))
	patientID := f.store.addPatient()

	f.store.put(appointment.Appointment{
		PatientID:       patientID,
		ScheduledStart:  at(13, 0),
		DurationMinutes: 30,
		Status:          appointment.StatusPending,
		CreatedBy:       patientID,
	})

	first, err := f.svc.AvailableSlots(context.Background(), testDay, 30)
	require.NoError(t, err)
	second, err := f.svc.AvailableSlots(context.Background(), testDay, 30)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAvailableSlotsLabels(t *testing.T) {
	f := newFixture(testDay.Add(-24 * time.Hour))

	slots, err := f.svc.AvailableSlots(context.Background(), testDay, 30)
	require.NoError(t, err)

	assert.Equal(t, "9:00 AM", slotAt(t, slots, at(9, 0)).Label)
	assert.Equal(t, "11:30 AM", slotAt(t, slots, at(11, 30)).Label)
	assert.Equal(t, "12:00 PM", slotAt(t, slots, at(12, 0)).Label)
	assert.Equal(t, "4:30 PM", slotAt(t, slots, at(16, 30)).Label)
}

func TestAvailableSlotsMorningAfternoonSplit(t *testing.T) {
	f := newFixture(testDay.Add(-24 * time.Hour))

	slots, err := f.svc.AvailableSlots(context.Background(), testDay, 30)
	require.NoError(t, err)

	for _, s := range slots.Morning {
		assert.Less(t, s.Start.Hour(), 12, "slot %s", s.Label)
	}
	for _, s := range slots.Afternoon {
		assert.GreaterOrEqual(t, s.Start.Hour(), 12, "slot %s", s.Label)
	}
}

func TestAvailableSlotsUnevenDuration(t *testing.T) {
	f := newFixture(testDay.Add(-24 * time.Hour))

	slots, err := f.svc.AvailableSlots(context.Background(), testDay, 45)
	require.NoError(t, err)

	all := allSlots(slots)
	require.NotEmpty(t, all)

	// 45-minute steps from 09:00; 16:30 would end at 17:15 so the grid
	// stops at 15:45.
	assert.Equal(t, at(9, 0), all[0].Start)
	assert.Equal(t, at(15, 45), all[len(all)-1].Start)
	for i := 1; i < len(all); i++ {
		assert.Equal(t, 45*time.Minute, all[i].Start.Sub(all[i-1].Start))
	}
}

func TestAvailableSlotsInvalidDuration(t *testing.T) {
	f := newFixture(testDay)

	_, err := f.svc.AvailableSlots(context.Background(), testDay, 0)
	assert.ErrorIs(t, err, appointment.ErrInvalidDuration)

	_, err = f.svc.AvailableSlots(context.Background(), testDay, -30)
	assert.ErrorIs(t, err, appointment.ErrInvalidDuration)
}
