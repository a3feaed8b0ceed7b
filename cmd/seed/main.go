package main

import (
	"context"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/careclinic/scheduling/internal/appointment"
	"github.com/careclinic/scheduling/internal/db"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "seed").Logger()
	log.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	clinicians, err := seedClinicians(context.Background(), pool, 25, log)
	if err != nil {
		log.Fatal().Err(err).Msg("seed clinicians")
	}
	patients, err := seedPatients(context.Background(), pool, 500, log)
	if err != nil {
		log.Fatal().Err(err).Msg("seed patients")
	}
	if err := seedAppointments(context.Background(), pool, patients, clinicians, log); err != nil {
		log.Fatal().Err(err).Msg("seed appointments")
	}

	log.Info().Msg("seed complete")
}

func seedClinicians(ctx context.Context, pool *pgxpool.Pool, count int, log zerolog.Logger) ([]uuid.UUID, error) {
	log.Info().Int("count", count).Msg("seeding clinicians")

	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO clinicians (id, name, specialty, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, id, name, spec)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Info().Msg("clinicians seeded")
	return ids, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int, log zerolog.Logger) ([]uuid.UUID, error) {
	log.Info().Int("count", count).Msg("seeding patients")

	const batchSize = 100

	ids := make([]uuid.UUID, 0, count)
	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return nil, err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			name := gofakeit.Name()
			email := gofakeit.Email()

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, name, email, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())
			`, id, name, email)
			if err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}
			ids = append(ids, id)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}

		log.Info().Int("seeded", end).Int("total", count).Msg("patients progress")
	}

	log.Info().Msg("patients seeded")
	return ids, nil
}

// seedAppointments fills tomorrow's clinic calendar with a mix of pending
// and scheduled 30-minute visits so the demo has conflicts to show.
func seedAppointments(ctx context.Context, pool *pgxpool.Pool, patients, clinicians []uuid.UUID, log zerolog.Logger) error {
	if len(patients) == 0 || len(clinicians) == 0 {
		return nil
	}

	now := time.Now().UTC()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var created int
	for hour := 9; hour < 17; hour++ {
		// leave roughly half the slots open
		if gofakeit.Bool() {
			continue
		}

		patient := patients[gofakeit.Number(0, len(patients)-1)]
		start := tomorrow.Add(time.Duration(hour) * time.Hour)

		status := appointment.StatusPending
		var clinician *uuid.UUID
		if gofakeit.Bool() {
			status = appointment.StatusScheduled
			c := clinicians[gofakeit.Number(0, len(clinicians)-1)]
			clinician = &c
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO appointments
				(id, patient_id, clinician_id, scheduled_start, duration_minutes,
				 status, reason, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		`, uuid.New(), patient, clinician, start, 30, status, gofakeit.Sentence(6), patient)
		if err != nil {
			return err
		}
		created++
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Info().Int("count", created).Str("date", tomorrow.Format("2006-01-02")).Msg("appointments seeded")
	return nil
}
