package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/careclinic/scheduling/internal/appointment"
	"github.com/careclinic/scheduling/internal/audit"
	"github.com/careclinic/scheduling/internal/clock"
	"github.com/careclinic/scheduling/internal/config"
	"github.com/careclinic/scheduling/internal/db"
	redisclient "github.com/careclinic/scheduling/internal/redis"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "noshow-worker").Logger()
	log.Info().Msg("noshow-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	log.Info().
		Str("env", cfg.Env).
		Dur("interval", cfg.WorkerInterval).
		Dur("grace", cfg.NoShowGrace).
		Msg("configuration loaded")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	store := appointment.NewPgStore(pgPool)
	locker := redisclient.NewRedisCalendarLocker(rdb, cfg.LockTTL)
	sink := audit.NewPgSink(pgPool, log.With().Str("component", "audit").Logger())
	svc := appointment.NewService(store, locker, sink, clock.System(), cfg)

	// Run once at startup
	runOnce(rootCtx, svc, cfg, log)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutdown signal received, stopping noshow-worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, cfg, log)
		}
	}
}

func runOnce(ctx context.Context, svc *appointment.Service, cfg config.Config, log zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	swept, err := svc.SweepNoShows(runCtx, cfg.NoShowGrace)
	if err != nil {
		log.Error().Err(err).Msg("no-show sweep error")
		return
	}
	log.Info().Int("swept", swept).Dur("took", time.Since(start)).Msg("no-show sweep complete")
}
