package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	ActionBookAppointment   = "book_appointment"
	ActionAssignClinician   = "assign_clinician"
	ActionCancelAppointment = "cancel_appointment"
	ActionMarkNoShow        = "mark_no_show"
)

const ResourceAppointment = "appointment"

// Entry is one audit record. ActorID may be uuid.Nil for system actions
// such as the no-show sweep.
type Entry struct {
	ActorID      uuid.UUID
	Action       string
	ResourceType string
	ResourceID   *uuid.UUID
	Details      map[string]any
}

// Sink receives audit entries. Delivery is fire-and-forget: implementations
// must never fail the calling workflow.
type Sink interface {
	Record(ctx context.Context, e Entry)
}

// NopSink discards every entry.
type NopSink struct{}

func (NopSink) Record(context.Context, Entry) {}

// PgSink writes audit rows to Postgres. Failures are logged and swallowed.
type PgSink struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewPgSink(pool *pgxpool.Pool, log zerolog.Logger) *PgSink {
	return &PgSink{pool: pool, log: log}
}

func (s *PgSink) Record(ctx context.Context, e Entry) {
	details, err := json.Marshal(e.Details)
	if err != nil {
		s.log.Error().Err(err).Str("action", e.Action).Msg("marshal audit details")
		details = nil
	}

	var actor *uuid.UUID
	if e.ActorID != uuid.Nil {
		id := e.ActorID
		actor = &id
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO audit_logs (actor_id, action, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`, actor, e.Action, e.ResourceType, e.ResourceID, details)
	if err != nil {
		s.log.Error().Err(err).Str("action", e.Action).Msg("insert audit log")
	}
}
