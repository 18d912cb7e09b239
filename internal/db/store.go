// Package db persists athlete state, the template catalog and generated plans
// in PostgreSQL.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when a row the caller asked for does not exist.
var ErrNotFound = errors.New("not found")

// DBPool is the subset of pgxpool.Pool the store uses, so tests can swap in
// pgxmock.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	sqlAthleteState = `
        SELECT tau1_days, experience, injury_return, weeks_since_peak, current_volume_ratio
        FROM athlete_state
        WHERE athlete_id = $1;
    `
	sqlTuneUps = `
        SELECT race_date, distance, purpose
        FROM tune_up_races
        WHERE athlete_id = $1
        ORDER BY race_date ASC;
    `
	sqlTemplates = `
        SELECT body
        FROM workout_templates
        WHERE active
        ORDER BY id ASC;
    `
	sqlDeletePlan = `DELETE FROM plans WHERE athlete_id = $1;`
	sqlInsertPlan = `
        INSERT INTO plans (id, athlete_id, distance, weeks, tier, days_per_week, goal_date, peak_volume, total_miles, body, generated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
    `
	sqlActivePlan = `SELECT body FROM plans WHERE athlete_id = $1;`
)

var workoutColumns = []string{
	"id", "plan_id", "week", "day", "date", "type", "subtype",
	"distance_mi", "duration_min", "pace", "template_id", "step_key",
}

// Store is the PostgreSQL adapter for the plan engine.
type Store struct {
	pool DBPool
	log  zerolog.Logger
}

// New creates a store and verifies the connection.
func New(ctx context.Context, pool DBPool, logger zerolog.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{
		pool: pool,
		log:  logger.With().Str("component", "store").Logger(),
	}, nil
}

// Migrate creates the tables if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// GetAthleteState reads the athlete summary the generator consumes,
// including scheduled tune-up races.
func (s *Store) GetAthleteState(ctx context.Context, athleteID uuid.UUID) (domain.AthleteConstraints, error) {
	var a domain.AthleteConstraints
	err := s.pool.QueryRow(ctx, sqlAthleteState, athleteID).Scan(
		&a.Tau1Days, &a.Experience, &a.InjuryReturn, &a.WeeksSincePeak, &a.CurrentVolumeRatio,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AthleteConstraints{}, fmt.Errorf("athlete %s: %w", athleteID, ErrNotFound)
	}
	if err != nil {
		return domain.AthleteConstraints{}, fmt.Errorf("failed to query athlete state: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlTuneUps, athleteID)
	if err != nil {
		return domain.AthleteConstraints{}, fmt.Errorf("failed to query tune-up races: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			date              time.Time
			distance, purpose string
		)
		if err := rows.Scan(&date, &distance, &purpose); err != nil {
			return domain.AthleteConstraints{}, fmt.Errorf("failed to scan tune-up row: %w", err)
		}
		a.TuneUps = append(a.TuneUps, domain.TuneUpRace{
			Date:     date,
			Distance: domain.Distance(distance),
			Purpose:  domain.TuneUpPurpose(purpose),
		})
	}
	if err := rows.Err(); err != nil {
		return domain.AthleteConstraints{}, fmt.Errorf("error during row iteration: %w", err)
	}
	return a, nil
}

// ListTemplates returns every active catalog template ordered by id.
func (s *Store) ListTemplates(ctx context.Context) ([]domain.WorkoutTemplate, error) {
	rows, err := s.pool.Query(ctx, sqlTemplates)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var out []domain.WorkoutTemplate
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan template row: %w", err)
		}
		var t domain.WorkoutTemplate
		if err := json.Unmarshal(body, &t); err != nil {
			return nil, fmt.Errorf("failed to decode template: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return out, nil
}

// ReplaceActivePlan swaps the athlete's active plan for p in one
// transaction. Either the whole new plan is visible or the old one stays.
func (s *Store) ReplaceActivePlan(ctx context.Context, athleteID uuid.UUID, p *domain.Plan) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error().Err(rollbackErr).Msg("failed to rollback transaction")
		}
	}()

	if _, err := tx.Exec(ctx, sqlDeletePlan, athleteID); err != nil {
		return fmt.Errorf("failed to delete previous plan: %w", err)
	}
	if _, err := tx.Exec(ctx, sqlInsertPlan,
		p.ID, athleteID, string(p.Spec.Distance), p.Spec.Weeks, string(p.Spec.Tier), p.Spec.DaysPerWeek,
		nullDate(p.Spec.GoalDate), p.PeakVolume, p.TotalMiles, body, p.GeneratedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}

	rows := make([][]any, len(p.Workouts))
	for i, w := range p.Workouts {
		rows[i] = []any{
			w.ID, p.ID, w.Week, w.Day, nullDate(w.Date), string(w.Type), w.Subtype,
			w.DistanceMi, w.DurationMin, w.Pace, w.TemplateID, w.StepKey,
		}
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{"plan_workouts"}, workoutColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy workouts: %w", err)
	}
	if int(n) != len(p.Workouts) {
		return fmt.Errorf("mismatch in copied workouts count: expected %d, got %d", len(p.Workouts), n)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.log.Info().
		Str("athlete_id", athleteID.String()).
		Str("plan_id", p.ID.String()).
		Int("workouts", len(p.Workouts)).
		Msg("active plan replaced")
	return nil
}

// GetActivePlan returns the athlete's current plan.
func (s *Store) GetActivePlan(ctx context.Context, athleteID uuid.UUID) (*domain.Plan, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, sqlActivePlan, athleteID).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("plan for athlete %s: %w", athleteID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query plan: %w", err)
	}
	var p domain.Plan
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	return &p, nil
}

func nullDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
