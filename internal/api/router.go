package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/careclinic/scheduling/internal/appointment"
)

type RouterConfig struct {
	Service            *appointment.Service
	PgPool             *pgxpool.Pool
	Redis              *redis.Client
	Log                zerolog.Logger
	DefaultSlotMinutes int
	Env                string
	Version            string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Slot availability
	r.Get("/slots", availableSlotsHandler(cfg.Service, cfg.DefaultSlotMinutes))

	// Appointment lifecycle
	r.Post("/appointments", bookAppointmentHandler(cfg.Service))
	r.Get("/appointments/pending", pendingAppointmentsHandler(cfg.Service))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Service))
	r.Post("/appointments/{id}/assign", assignClinicianHandler(cfg.Service))
	r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Service))
	r.Post("/appointments/{id}/complete", completeAppointmentHandler(cfg.Service))

	// Dashboard reads
	r.Get("/patients/{id}/appointments/upcoming", patientUpcomingHandler(cfg.Service))
	r.Get("/patients/{id}/appointments/upcoming/count", patientUpcomingCountHandler(cfg.Service))
	r.Get("/patients/{id}/appointments/next", patientNextHandler(cfg.Service))
	r.Get("/patients/{id}/appointments/past", patientPastHandler(cfg.Service))
	r.Get("/patients/{id}/appointments/past/count", patientPastCountHandler(cfg.Service))
	r.Get("/clinicians/{id}/appointments", clinicianCalendarHandler(cfg.Service))

	return r
}
