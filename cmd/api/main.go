// cmd/api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Nmdk1/StrideIQ-sub003/internal/config"
	"github.com/Nmdk1/StrideIQ-sub003/internal/db"
	"github.com/Nmdk1/StrideIQ-sub003/internal/generator"
	"github.com/Nmdk1/StrideIQ-sub003/internal/http/routes"
	"github.com/Nmdk1/StrideIQ-sub003/internal/jobs"
	"github.com/Nmdk1/StrideIQ-sub003/internal/plans"
	"github.com/Nmdk1/StrideIQ-sub003/internal/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// Logger
	logger := zerolog.New(os.Stdout).Level(cfg.Level()).With().Timestamp().Logger()
	logger.Info().Str("port", cfg.Port).Msg("starting api")

	// DB
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("db error")
	}
	defer pool.Close()
	store, err := db.New(ctx, pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("db error")
	}
	if err := store.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	// Template catalog
	reg, err := plans.LoadCatalog(ctx, cfg, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("template catalog error")
	}
	logger.Info().Str("source", cfg.TemplateSource).Int("templates", reg.Len()).Msg("catalog loaded")

	gen := generator.New(reg, logger, generator.Options{
		Selector: templates.Options{
			DontRepeatWindow:   cfg.DontRepeatWindow,
			DontFollowLookback: cfg.DontFollowLookback,
		},
	})

	// Queue client
	q := jobs.NewClient(cfg.RedisAddr, logger)
	defer func() {
		if err := q.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing asynq client")
		}
	}()

	// Router / server
	s := routes.New(routes.ServerOptions{
		Plans:   plans.NewService(store, gen, logger),
		Jobs:    q,
		Catalog: reg,
	})
	h := hlog.NewHandler(logger)(s.Router)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: h}
	log.Fatal(srv.ListenAndServe())
}
