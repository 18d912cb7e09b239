package main

import (
	"context"
	"log"
	"os"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Nmdk1/StrideIQ-sub003/internal/config"
	"github.com/Nmdk1/StrideIQ-sub003/internal/db"
	"github.com/Nmdk1/StrideIQ-sub003/internal/generator"
	"github.com/Nmdk1/StrideIQ-sub003/internal/jobs"
	"github.com/Nmdk1/StrideIQ-sub003/internal/plans"
	"github.com/Nmdk1/StrideIQ-sub003/internal/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := zerolog.New(os.Stdout).Level(cfg.Level()).With().Timestamp().Str("service", "worker").Logger()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to connect to database")
	}
	defer pool.Close()
	store, err := db.New(ctx, pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to connect to database")
	}

	reg, err := plans.LoadCatalog(ctx, cfg, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("template catalog error")
	}
	gen := generator.New(reg, logger, generator.Options{
		Selector: templates.Options{
			DontRepeatWindow:   cfg.DontRepeatWindow,
			DontFollowLookback: cfg.DontFollowLookback,
		},
	})
	svc := plans.NewService(store, gen, logger)

	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, asynq.Config{
		Concurrency:    8,
		StrictPriority: false,
		Queues: map[string]int{
			jobs.QueuePlans: 10, // higher priority
			"default":       5,
		},
	})
	mux := asynq.NewServeMux()
	mux.Handle(jobs.TaskGeneratePlan, jobs.NewGeneratePlanHandler(svc, logger))

	logger.Info().Msg("worker running")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped")
	}
}
