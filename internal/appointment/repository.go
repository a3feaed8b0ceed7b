package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrClinicianNotFound   = errors.New("clinician not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	ErrInvalidDuration  = errors.New("duration must be a positive number of minutes")
	ErrMissingPatient   = errors.New("patient id is required")
	ErrMissingClinician = errors.New("clinician id is required")
	ErrMissingActor     = errors.New("acting user id is required")

	ErrSlotUnavailable         = errors.New("slot no longer available")
	ErrClinicianUnavailable    = errors.New("clinician unavailable at the requested time")
	ErrCalendarBusy            = errors.New("calendar is being updated, please retry")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// Store contains all DB interactions needed by the service.
type Store interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetClinicianByID(ctx context.Context, id uuid.UUID) (*Clinician, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// ListLiveForDate returns pending and scheduled appointments starting
	// on the same UTC date as day, ordered by start. A non-nil clinicianID
	// narrows the result to that clinician's calendar.
	ListLiveForDate(ctx context.Context, day time.Time, clinicianID *uuid.UUID) ([]Appointment, error)

	Insert(ctx context.Context, appt *Appointment) (*Appointment, error)

	// AssignClinician sets clinician_id and moves pending -> scheduled in a
	// single statement. Returns ErrAppointmentNotFound when the row is
	// missing or no longer pending.
	AssignClinician(ctx context.Context, id, clinicianID uuid.UUID) (*Appointment, error)

	// UpdateStatus is a compare-and-set status change; it fails with
	// ErrAppointmentNotFound when the row is not currently in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)

	// Cancel moves a live appointment to cancelled, recording when and why.
	Cancel(ctx context.Context, id uuid.UUID, at time.Time, reason string) (*Appointment, error)

	// Read side for the patient and admin dashboards.
	ListUpcomingForPatient(ctx context.Context, patientID uuid.UUID, after time.Time) ([]Appointment, error)
	NextForPatient(ctx context.Context, patientID uuid.UUID, after time.Time) (*Appointment, error)
	CountUpcomingForPatient(ctx context.Context, patientID uuid.UUID, after time.Time) (int, error)
	ListPastForPatient(ctx context.Context, patientID uuid.UUID, before time.Time, limit, offset int) ([]Appointment, error)
	CountPastForPatient(ctx context.Context, patientID uuid.UUID, before time.Time) (int, error)
	ListPending(ctx context.Context) ([]Appointment, error)
	ListForClinicianRange(ctx context.Context, clinicianID uuid.UUID, from, to time.Time) ([]Appointment, error)

	// No-show sweep.
	FindOverdueScheduled(ctx context.Context, endedBefore time.Time) ([]Appointment, error)
}
