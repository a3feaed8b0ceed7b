package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/careclinic/scheduling/internal/appointment"
)

type BookAppointmentRequest struct {
	PatientID       string `json:"patient_id"`
	ScheduledStart  string `json:"scheduled_start"` // RFC 3339
	DurationMinutes int    `json:"duration_minutes"`
	Reason          string `json:"reason,omitempty"`
	CreatedBy       string `json:"created_by"`
}

type AssignClinicianRequest struct {
	ClinicianID string `json:"clinician_id"`
	AssignedBy  string `json:"assigned_by"`
}

type CancelAppointmentRequest struct {
	Reason      string `json:"reason,omitempty"`
	CancelledBy string `json:"cancelled_by"`
}

type AppointmentResponse struct {
	ID                 uuid.UUID  `json:"id"`
	PatientID          uuid.UUID  `json:"patient_id"`
	ClinicianID        *uuid.UUID `json:"clinician_id,omitempty"`
	ScheduledStart     time.Time  `json:"scheduled_start"`
	DurationMinutes    int        `json:"duration_minutes"`
	Status             string     `json:"status"`
	Reason             string     `json:"reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:                 a.ID,
		PatientID:          a.PatientID,
		ClinicianID:        a.ClinicianID,
		ScheduledStart:     a.ScheduledStart,
		DurationMinutes:    a.DurationMinutes,
		Status:             string(a.Status),
		Reason:             a.Reason,
		CancelledAt:        a.CancelledAt,
		CancellationReason: a.CancellationReason,
	}
}

func toAppointmentResponses(appts []appointment.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentResponse(&appts[i]))
	}
	return out
}

type SlotResponse struct {
	Start     time.Time `json:"start"`
	Label     string    `json:"label"`
	Available bool      `json:"available"`
}

type DaySlotsResponse struct {
	Date      string         `json:"date"`
	Morning   []SlotResponse `json:"morning"`
	Afternoon []SlotResponse `json:"afternoon"`
}

func toSlotResponses(slots []appointment.TimeSlot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotResponse{Start: s.Start, Label: s.Label, Available: s.Available})
	}
	return out
}

type CountResponse struct {
	Count int `json:"count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
