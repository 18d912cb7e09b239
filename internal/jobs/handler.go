package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
	"github.com/Nmdk1/StrideIQ-sub003/internal/plans"
)

// Regenerator is the part of plans.Service the worker drives.
type Regenerator interface {
	Regenerate(ctx context.Context, athleteID uuid.UUID, req plans.Request) (*domain.Plan, error)
}

// NewGeneratePlanHandler processes TaskGeneratePlan. Transient failures are
// returned so asynq retries them; permanent ones are logged and dropped.
func NewGeneratePlanHandler(svc Regenerator, logger zerolog.Logger) asynq.HandlerFunc {
	log := logger.With().Str("task", TaskGeneratePlan).Logger()
	return func(ctx context.Context, t *asynq.Task) error {
		var p GeneratePlanPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			log.Error().Err(err).Msg("bad payload, dropping job")
			return nil
		}
		athleteID, err := uuid.Parse(p.AthleteID)
		if err != nil {
			log.Error().Err(err).Str("athlete_id", p.AthleteID).Msg("bad athlete id, dropping job")
			return nil
		}

		log.Info().Str("athlete_id", p.AthleteID).Msg("start")
		start := time.Now()
		plan, err := svc.Regenerate(ctx, athleteID, p.Request)
		duration := time.Since(start)

		if err != nil {
			if isRetryableError(err) {
				log.Warn().Err(err).Str("athlete_id", p.AthleteID).Dur("duration", duration).Msg("retryable error")
				return err
			}
			log.Error().Err(err).Str("athlete_id", p.AthleteID).Dur("duration", duration).Msg("permanent error, dropping job")
			return nil
		}
		log.Info().
			Str("athlete_id", p.AthleteID).
			Str("plan_id", plan.ID.String()).
			Int("degradations", len(plan.Degradations)).
			Dur("duration", duration).
			Msg("done")
		return nil
	}
}

// isRetryableError determines if an error should trigger a job retry
func isRetryableError(err error) bool {
	// Bad requests and broken plans fail the same way every time.
	if errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrUnsatisfiableConstraint) ||
		errors.Is(err, domain.ErrInvariantViolation) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "network") ||
		strings.Contains(errStr, "deadlock") ||
		strings.Contains(errStr, "serialization") {
		return true
	}
	return false
}
