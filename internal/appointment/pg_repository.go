package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const apptColumns = `id, patient_id, clinician_id, scheduled_start, duration_minutes,
	status, COALESCE(reason, ''), created_by, cancelled_at, cancellation_reason,
	created_at, updated_at`

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var email *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.Email = email
	return &p, nil
}

func scanClinician(row pgx.Row) (*Clinician, error) {
	var c Clinician
	var specialty *string

	err := row.Scan(
		&c.ID,
		&c.Name,
		&specialty,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClinicianNotFound
		}
		return nil, err
	}

	c.Specialty = specialty
	return &c, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.ClinicianID,
		&a.ScheduledStart,
		&a.DurationMinutes,
		&a.Status,
		&a.Reason,
		&a.CreatedBy,
		&a.CancelledAt,
		&a.CancellationReason,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.ScheduledStart = a.ScheduledStart.UTC()
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Interface methods

func (s *PgStore) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (s *PgStore) GetClinicianByID(ctx context.Context, id uuid.UUID) (*Clinician, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, specialty, created_at, updated_at
		FROM clinicians
		WHERE id = $1
	`, id)
	return scanClinician(row)
}

func (s *PgStore) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (s *PgStore) ListLiveForDate(ctx context.Context, day time.Time, clinicianID *uuid.UUID) ([]Appointment, error) {
	day = day.UTC()
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := s.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE scheduled_start >= $1
		  AND scheduled_start < $2
		  AND status = ANY($3)
		  AND ($4::uuid IS NULL OR clinician_id = $4)
		ORDER BY scheduled_start ASC
	`, dayStart, dayEnd, liveStatuses, clinicianID)
	if err != nil {
		return nil, err
	}

	return collectAppointments(rows)
}

func (s *PgStore) Insert(ctx context.Context, appt *Appointment) (*Appointment, error) {
	id := uuid.New()

	row := s.pool.QueryRow(ctx, `
		INSERT INTO appointments
			(id, patient_id, clinician_id, scheduled_start, duration_minutes,
			 status, reason, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, now(), now())
		RETURNING `+apptColumns+`
	`, id, appt.PatientID, appt.ClinicianID, appt.ScheduledStart, appt.DurationMinutes,
		appt.Status, appt.Reason, appt.CreatedBy)

	return scanAppointment(row)
}

func (s *PgStore) AssignClinician(ctx context.Context, id, clinicianID uuid.UUID) (*Appointment, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE appointments
		SET clinician_id = $2,
		    status = $3,
		    updated_at = now()
		WHERE id = $1
		  AND status = $4
		RETURNING `+apptColumns+`
	`, id, clinicianID, StatusScheduled, StatusPending)

	return scanAppointment(row)
}

func (s *PgStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+apptColumns+`
	`, id, to, from)

	return scanAppointment(row)
}

func (s *PgStore) Cancel(ctx context.Context, id uuid.UUID, at time.Time, reason string) (*Appointment, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    cancelled_at = $3,
		    cancellation_reason = NULLIF($4, ''),
		    updated_at = now()
		WHERE id = $1
		  AND status = ANY($5)
		RETURNING `+apptColumns+`
	`, id, StatusCancelled, at, reason, liveStatuses)

	return scanAppointment(row)
}

func (s *PgStore) ListUpcomingForPatient(ctx context.Context, patientID uuid.UUID, after time.Time) ([]Appointment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE patient_id = $1
		  AND scheduled_start >= $2
		  AND status = $3
		ORDER BY scheduled_start ASC
	`, patientID, after, StatusScheduled)
	if err != nil {
		return nil, err
	}

	return collectAppointments(rows)
}

func (s *PgStore) NextForPatient(ctx context.Context, patientID uuid.UUID, after time.Time) (*Appointment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE patient_id = $1
		  AND scheduled_start >= $2
		  AND status = $3
		ORDER BY scheduled_start ASC
		LIMIT 1
	`, patientID, after, StatusScheduled)
	return scanAppointment(row)
}

func (s *PgStore) CountUpcomingForPatient(ctx context.Context, patientID uuid.UUID, after time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM appointments
		WHERE patient_id = $1
		  AND scheduled_start >= $2
		  AND status = $3
	`, patientID, after, StatusScheduled).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *PgStore) ListPastForPatient(ctx context.Context, patientID uuid.UUID, before time.Time, limit, offset int) ([]Appointment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE patient_id = $1
		  AND (scheduled_start < $2 OR status = ANY($3))
		ORDER BY scheduled_start DESC
		LIMIT $4 OFFSET $5
	`, patientID, before, terminalStatuses, limit, offset)
	if err != nil {
		return nil, err
	}

	return collectAppointments(rows)
}

func (s *PgStore) CountPastForPatient(ctx context.Context, patientID uuid.UUID, before time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM appointments
		WHERE patient_id = $1
		  AND (scheduled_start < $2 OR status = ANY($3))
	`, patientID, before, terminalStatuses).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *PgStore) ListPending(ctx context.Context) ([]Appointment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE status = $1
		ORDER BY scheduled_start ASC
	`, StatusPending)
	if err != nil {
		return nil, err
	}

	return collectAppointments(rows)
}

func (s *PgStore) ListForClinicianRange(ctx context.Context, clinicianID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE clinician_id = $1
		  AND scheduled_start >= $2
		  AND scheduled_start < $3
		ORDER BY scheduled_start ASC
	`, clinicianID, from, to)
	if err != nil {
		return nil, err
	}

	return collectAppointments(rows)
}

func (s *PgStore) FindOverdueScheduled(ctx context.Context, endedBefore time.Time) ([]Appointment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE status = $1
		  AND scheduled_start + make_interval(mins => duration_minutes) < $2
	`, StatusScheduled, endedBefore)
	if err != nil {
		return nil, err
	}

	return collectAppointments(rows)
}

var _ Store = (*PgStore)(nil)
