package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careclinic/scheduling/internal/audit"
	"github.com/careclinic/scheduling/internal/clock"
	"github.com/careclinic/scheduling/internal/config"
	redisclient "github.com/careclinic/scheduling/internal/redis"
)

// Service implements the scheduling engine: slot availability, the booking
// and assignment workflows, cancellation, and the dashboard read paths.
// It holds no state between calls; the store is the single source of truth.
type Service struct {
	store  Store
	locker redisclient.Locker
	sink   audit.Sink
	clk    clock.Clock
	cfg    config.Config
}

func NewService(store Store, locker redisclient.Locker, sink audit.Sink, clk clock.Clock, cfg config.Config) *Service {
	return &Service{
		store:  store,
		locker: locker,
		sink:   sink,
		clk:    clk,
		cfg:    cfg,
	}
}

// AvailableSlots computes the bookable grid for one calendar day. Results
// are recomputed on every call; nothing is cached between requests.
func (s *Service) AvailableSlots(ctx context.Context, day time.Time, durationMinutes int) (DaySlots, error) {
	if durationMinutes <= 0 {
		return DaySlots{}, ErrInvalidDuration
	}

	day = clock.NormalizeUTC(day)

	// Availability is checked against the whole clinic calendar, not a
	// single clinician: at booking time no clinician is attached yet.
	live, err := s.store.ListLiveForDate(ctx, day, nil)
	if err != nil {
		return DaySlots{}, fmt.Errorf("list live appointments: %w", err)
	}

	duration := time.Duration(durationMinutes) * time.Minute
	return buildDaySlots(day, duration, s.cfg.ClinicOpenHour, s.cfg.ClinicCloseHour, liveIntervals(live), s.clk.Now()), nil
}

type BookingRequest struct {
	PatientID       uuid.UUID
	ScheduledStart  time.Time
	DurationMinutes int
	Reason          string
	CreatedBy       uuid.UUID
}

// Book validates a patient's request and persists it as a pending
// appointment with no clinician. The conflict check runs inside a per-day
// calendar lock so two concurrent requests for the same interval cannot
// both pass it.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if req.PatientID == uuid.Nil {
		return nil, ErrMissingPatient
	}
	if req.CreatedBy == uuid.Nil {
		return nil, ErrMissingActor
	}
	if req.DurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	start := clock.NormalizeUTC(req.ScheduledStart)
	end := start.Add(time.Duration(req.DurationMinutes) * time.Minute)

	if _, err := s.store.GetPatientByID(ctx, req.PatientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	var created *Appointment

	err := s.locker.WithLock(ctx, clinicDayKey(start), func(lockCtx context.Context) error {
		live, err := s.store.ListLiveForDate(lockCtx, start, nil)
		if err != nil {
			return fmt.Errorf("list live appointments: %w", err)
		}
		for _, busy := range liveIntervals(live) {
			if clock.Overlaps(start, end, busy.start, busy.end) {
				return ErrSlotUnavailable
			}
		}

		appt, err := s.store.Insert(lockCtx, &Appointment{
			PatientID:       req.PatientID,
			ClinicianID:     nil,
			ScheduledStart:  start,
			DurationMinutes: req.DurationMinutes,
			Status:          StatusPending,
			Reason:          req.Reason,
			CreatedBy:       req.CreatedBy,
		})
		if err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}

		created = appt
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrCalendarBusy
		}
		return nil, err
	}

	s.sink.Record(ctx, audit.Entry{
		ActorID:      req.CreatedBy,
		Action:       audit.ActionBookAppointment,
		ResourceType: audit.ResourceAppointment,
		ResourceID:   &created.ID,
		Details: map[string]any{
			"scheduled_start":  created.ScheduledStart,
			"duration_minutes": created.DurationMinutes,
		},
	})

	return created, nil
}

// Assign binds a clinician to a pending appointment, moving it to
// scheduled. The conflict re-check is narrowed to the target clinician's
// own calendar and excludes the appointment being assigned; it runs inside
// a per-clinician-per-day lock. Clinician and status are updated in one
// statement, so no intermediate state is ever readable.
func (s *Service) Assign(ctx context.Context, appointmentID, clinicianID, assignedBy uuid.UUID) (*Appointment, error) {
	if clinicianID == uuid.Nil {
		return nil, ErrMissingClinician
	}
	if assignedBy == uuid.Nil {
		return nil, ErrMissingActor
	}

	appt, err := s.store.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if appt.Status != StatusPending {
		return nil, ErrInvalidStatusTransition
	}

	if _, err := s.store.GetClinicianByID(ctx, clinicianID); err != nil {
		if errors.Is(err, ErrClinicianNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load clinician: %w", err)
	}

	start := clock.NormalizeUTC(appt.Start())
	end := clock.NormalizeUTC(appt.End())

	var updated *Appointment

	err = s.locker.WithLock(ctx, clinicianDayKey(clinicianID, start), func(lockCtx context.Context) error {
		live, err := s.store.ListLiveForDate(lockCtx, start, &clinicianID)
		if err != nil {
			return fmt.Errorf("list clinician appointments: %w", err)
		}
		for i := range live {
			other := &live[i]
			if other.ID == appt.ID || !other.Status.IsLive() {
				continue
			}
			if clock.Overlaps(start, end, clock.NormalizeUTC(other.Start()), clock.NormalizeUTC(other.End())) {
				return ErrClinicianUnavailable
			}
		}

		updated, err = s.store.AssignClinician(lockCtx, appt.ID, clinicianID)
		if err != nil {
			if errors.Is(err, ErrAppointmentNotFound) {
				// The row left pending between our read and the update.
				return ErrInvalidStatusTransition
			}
			return fmt.Errorf("assign clinician: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrCalendarBusy
		}
		return nil, err
	}

	s.sink.Record(ctx, audit.Entry{
		ActorID:      assignedBy,
		Action:       audit.ActionAssignClinician,
		ResourceType: audit.ResourceAppointment,
		ResourceID:   &updated.ID,
		Details: map[string]any{
			"clinician_id":     clinicianID,
			"scheduled_start":  updated.ScheduledStart,
			"duration_minutes": updated.DurationMinutes,
		},
	})

	return updated, nil
}

// Cancel moves a live appointment to cancelled, recording the timestamp
// and the caller's reason. Legal from pending or scheduled only.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string, cancelledBy uuid.UUID) (*Appointment, error) {
	if cancelledBy == uuid.Nil {
		return nil, ErrMissingActor
	}

	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if !appt.Status.CanTransitionTo(StatusCancelled) {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.store.Cancel(ctx, id, s.clk.Now(), reason)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	s.sink.Record(ctx, audit.Entry{
		ActorID:      cancelledBy,
		Action:       audit.ActionCancelAppointment,
		ResourceType: audit.ResourceAppointment,
		ResourceID:   &updated.ID,
		Details: map[string]any{
			"reason": reason,
		},
	})

	return updated, nil
}

// Complete closes out a scheduled appointment after the visit happened.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if !appt.Status.CanTransitionTo(StatusCompleted) {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.store.UpdateStatus(ctx, id, StatusScheduled, StatusCompleted)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("complete appointment: %w", err)
	}

	return updated, nil
}

// SweepNoShows transitions scheduled appointments whose interval ended more
// than grace ago to no_show. Called periodically by the worker. Returns the
// number of appointments swept.
func (s *Service) SweepNoShows(ctx context.Context, grace time.Duration) (int, error) {
	cutoff := s.clk.Now().Add(-grace)

	overdue, err := s.store.FindOverdueScheduled(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("find overdue appointments: %w", err)
	}

	var swept int
	for i := range overdue {
		appt := &overdue[i]

		updated, err := s.store.UpdateStatus(ctx, appt.ID, StatusScheduled, StatusNoShow)
		if err != nil {
			if errors.Is(err, ErrAppointmentNotFound) {
				// state moved on since the query
				continue
			}
			return swept, fmt.Errorf("mark no-show: %w", err)
		}
		swept++

		s.sink.Record(ctx, audit.Entry{
			ActorID:      uuid.Nil,
			Action:       audit.ActionMarkNoShow,
			ResourceType: audit.ResourceAppointment,
			ResourceID:   &updated.ID,
			Details: map[string]any{
				"scheduled_start": updated.ScheduledStart,
			},
		})
	}

	return swept, nil
}

// Get retrieves one appointment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// UpcomingForPatient lists the patient's scheduled future appointments.
func (s *Service) UpcomingForPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	if patientID == uuid.Nil {
		return nil, ErrMissingPatient
	}
	appts, err := s.store.ListUpcomingForPatient(ctx, patientID, s.clk.Now())
	if err != nil {
		return nil, fmt.Errorf("list upcoming appointments: %w", err)
	}
	return appts, nil
}

// NextForPatient returns the patient's next scheduled appointment, or
// ErrAppointmentNotFound when there is none.
func (s *Service) NextForPatient(ctx context.Context, patientID uuid.UUID) (*Appointment, error) {
	if patientID == uuid.Nil {
		return nil, ErrMissingPatient
	}
	appt, err := s.store.NextForPatient(ctx, patientID, s.clk.Now())
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("next appointment: %w", err)
	}
	return appt, nil
}

// CountUpcomingForPatient counts the patient's scheduled future visits.
func (s *Service) CountUpcomingForPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	if patientID == uuid.Nil {
		return 0, ErrMissingPatient
	}
	count, err := s.store.CountUpcomingForPatient(ctx, patientID, s.clk.Now())
	if err != nil {
		return 0, fmt.Errorf("count upcoming appointments: %w", err)
	}
	return count, nil
}

// PastForPatient returns a page of the patient's history, newest first.
func (s *Service) PastForPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	if patientID == uuid.Nil {
		return nil, ErrMissingPatient
	}
	if limit <= 0 {
		limit = 20 // default
	}
	if limit > 100 {
		limit = 100 // max
	}
	if offset < 0 {
		offset = 0
	}

	appts, err := s.store.ListPastForPatient(ctx, patientID, s.clk.Now(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list past appointments: %w", err)
	}
	return appts, nil
}

// CountPastForPatient counts the patient's history for pagination.
func (s *Service) CountPastForPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	if patientID == uuid.Nil {
		return 0, ErrMissingPatient
	}
	count, err := s.store.CountPastForPatient(ctx, patientID, s.clk.Now())
	if err != nil {
		return 0, fmt.Errorf("count past appointments: %w", err)
	}
	return count, nil
}

// PendingQueue lists every pending appointment for the admin dashboard.
func (s *Service) PendingQueue(ctx context.Context) ([]Appointment, error) {
	appts, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending appointments: %w", err)
	}
	return appts, nil
}

// ClinicianCalendar lists a clinician's appointments in [from, to).
func (s *Service) ClinicianCalendar(ctx context.Context, clinicianID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	if clinicianID == uuid.Nil {
		return nil, ErrMissingClinician
	}
	appts, err := s.store.ListForClinicianRange(ctx, clinicianID, clock.NormalizeUTC(from), clock.NormalizeUTC(to))
	if err != nil {
		return nil, fmt.Errorf("list clinician appointments: %w", err)
	}
	return appts, nil
}

func clinicDayKey(t time.Time) string {
	return "lock:clinic:" + t.UTC().Format("2006-01-02")
}

func clinicianDayKey(id uuid.UUID, t time.Time) string {
	return fmt.Sprintf("lock:clinician:%s:%s", id, t.UTC().Format("2006-01-02"))
}
