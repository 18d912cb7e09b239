// Package plans ties the generator to persistence: it resolves athlete
// state, runs a generation and swaps the athlete's active plan.
package plans

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Nmdk1/StrideIQ-sub003/internal/config"
	"github.com/Nmdk1/StrideIQ-sub003/internal/db"
	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
	"github.com/Nmdk1/StrideIQ-sub003/internal/generator"
	"github.com/Nmdk1/StrideIQ-sub003/internal/templates"
)

// Store is the persistence the service needs. *db.Store satisfies it.
type Store interface {
	GetAthleteState(ctx context.Context, athleteID uuid.UUID) (domain.AthleteConstraints, error)
	ReplaceActivePlan(ctx context.Context, athleteID uuid.UUID, p *domain.Plan) error
	GetActivePlan(ctx context.Context, athleteID uuid.UUID) (*domain.Plan, error)
}

// TemplateLister reads the catalog from the database.
type TemplateLister interface {
	ListTemplates(ctx context.Context) ([]domain.WorkoutTemplate, error)
}

// Service generates and stores plans. Safe for concurrent use.
type Service struct {
	store Store
	gen   *generator.Generator
	log   zerolog.Logger
}

func NewService(store Store, gen *generator.Generator, logger zerolog.Logger) *Service {
	return &Service{
		store: store,
		gen:   gen,
		log:   logger.With().Str("component", "plans").Logger(),
	}
}

// Preview generates a plan for an athlete with no stored state and does
// not persist it.
func (s *Service) Preview(req Request) (*domain.Plan, error) {
	spec, c, err := req.Spec()
	if err != nil {
		return nil, err
	}
	return s.gen.Generate(generator.Request{Spec: spec, Constraints: c})
}

// Regenerate builds a new plan for the athlete and replaces the active one.
// The previous plan survives any failure.
func (s *Service) Regenerate(ctx context.Context, athleteID uuid.UUID, req Request) (*domain.Plan, error) {
	spec, c, err := req.Spec()
	if err != nil {
		return nil, err
	}

	athlete, err := s.store.GetAthleteState(ctx, athleteID)
	switch {
	case errors.Is(err, db.ErrNotFound):
		s.log.Debug().Str("athlete_id", athleteID.String()).Msg("no athlete state, using defaults")
		athlete = domain.AthleteConstraints{}
	case err != nil:
		return nil, fmt.Errorf("load athlete state: %w", err)
	}

	p, err := s.gen.Generate(generator.Request{
		PlanID:      uuid.NewSHA1(athleteID, []byte(fmt.Sprintf("%+v|%+v|%+v", spec, athlete, c))),
		Spec:        spec,
		Athlete:     athlete,
		Constraints: c,
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceActivePlan(ctx, athleteID, p); err != nil {
		return nil, fmt.Errorf("store plan: %w", err)
	}
	return p, nil
}

// Active returns the athlete's stored plan.
func (s *Service) Active(ctx context.Context, athleteID uuid.UUID) (*domain.Plan, error) {
	return s.store.GetActivePlan(ctx, athleteID)
}

// LoadCatalog builds the template registry the configuration points at.
// lister may be nil unless the source is the database.
func LoadCatalog(ctx context.Context, cfg config.Config, lister TemplateLister) (*templates.Registry, error) {
	if cfg.TemplateSource == config.SourceDB {
		if lister == nil {
			return nil, fmt.Errorf("template source %q needs a database", cfg.TemplateSource)
		}
		ts, err := lister.ListTemplates(ctx)
		if err != nil {
			return nil, err
		}
		return templates.FromTemplates(ts)
	}
	if cfg.TemplateFile != "" {
		return templates.LoadFile(cfg.TemplateFile)
	}
	return templates.Default()
}
