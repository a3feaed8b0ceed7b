package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// IsLive reports whether an appointment in this status occupies calendar
// space for overlap purposes.
func (s Status) IsLive() bool {
	switch s {
	case StatusPending, StatusScheduled:
		return true
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return false
	}
	return false
}

// IsTerminal reports whether this status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	case StatusPending, StatusScheduled:
		return false
	}
	return false
}

// transitions is the full status machine. Terminal states have no edges.
var transitions = map[Status][]Status{
	StatusPending:   {StatusScheduled, StatusCancelled},
	StatusScheduled: {StatusCompleted, StatusCancelled, StatusNoShow},
	StatusCompleted: nil,
	StatusCancelled: nil,
	StatusNoShow:    nil,
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// liveStatuses is passed to date-range queries so the live/terminal split
// is defined here and nowhere else.
var liveStatuses = []string{string(StatusPending), string(StatusScheduled)}

// terminalStatuses mirrors liveStatuses for the read-side history queries.
var terminalStatuses = []string{string(StatusCompleted), string(StatusCancelled), string(StatusNoShow)}

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Clinician struct {
	ID        uuid.UUID
	Name      string
	Specialty *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Appointment is a patient visit request. It is created pending with no
// clinician, gains one when scheduled, and ends in a terminal status.
// Rows are never deleted.
type Appointment struct {
	ID                 uuid.UUID
	PatientID          uuid.UUID
	ClinicianID        *uuid.UUID // nil until assignment
	ScheduledStart     time.Time  // always UTC
	DurationMinutes    int
	Status             Status
	Reason             string
	CreatedBy          uuid.UUID
	CancelledAt        *time.Time
	CancellationReason *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Start and End bound the occupied interval [Start, End).
func (a *Appointment) Start() time.Time { return a.ScheduledStart }

func (a *Appointment) End() time.Time {
	return a.ScheduledStart.Add(time.Duration(a.DurationMinutes) * time.Minute)
}
