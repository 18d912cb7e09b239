// Package generator assembles the full day-by-day plan: it runs the phase
// planner and theme generator once, then fills every week slot by slot.
package generator

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
	"github.com/Nmdk1/StrideIQ-sub003/internal/scaler"
	"github.com/Nmdk1/StrideIQ-sub003/internal/templates"
	"github.com/Nmdk1/StrideIQ-sub003/internal/themes"
	"github.com/Nmdk1/StrideIQ-sub003/internal/volume"
)

// Options configure a Generator.
type Options struct {
	Selector templates.Options
	// Clock stamps Plan.GeneratedAt. Defaults to time.Now.
	Clock func() time.Time
}

// Generator builds plans. It is safe for concurrent use: the repository is
// only read and every call keeps its state on the stack.
type Generator struct {
	repo     templates.Repository
	selector *templates.Selector
	log      zerolog.Logger
	clock    func() time.Time
}

// New returns a generator reading templates from repo.
func New(repo templates.Repository, logger zerolog.Logger, opts Options) *Generator {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Generator{
		repo:     repo,
		selector: templates.NewSelector(repo, opts.Selector),
		log:      logger.With().Str("component", "generator").Logger(),
		clock:    clock,
	}
}

// Request is one generation call.
type Request struct {
	// PlanID is used as the plan id when set. Otherwise the id is derived
	// from the inputs.
	PlanID      uuid.UUID
	Spec        domain.PlanSpec
	Athlete     domain.AthleteConstraints
	Constraints templates.Constraints
}

// GenerateStandard builds a plan for an athlete with no individual
// constraints.
func (g *Generator) GenerateStandard(d domain.Distance, weeks int, tier domain.Tier, daysPerWeek int) (*domain.Plan, error) {
	return g.Generate(Request{Spec: domain.PlanSpec{
		Distance:    d,
		Weeks:       weeks,
		Tier:        tier,
		DaysPerWeek: daysPerWeek,
	}})
}

// Generate builds and validates a complete plan. Nothing partial is ever
// returned: on error the plan is nil.
func (g *Generator) Generate(req Request) (*domain.Plan, error) {
	spec := req.Spec
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	lay, degradations, err := layoutFor(spec.DaysPerWeek)
	if err != nil {
		return nil, err
	}

	phases, err := volume.BuildPhases(spec.Distance, spec.Weeks, spec.Tier, volume.Options{
		Tau1Days:           req.Athlete.Tau1Days,
		CurrentVolumeRatio: req.Athlete.CurrentVolumeRatio,
	})
	if err != nil {
		return nil, err
	}
	themed, err := themes.Generate(themes.Input{Phases: phases, Athlete: req.Athlete, Spec: spec})
	if err != nil {
		return nil, err
	}
	degradations = append(degradations, themed.Skipped...)

	peak, err := volume.PeakVolume(spec.Distance, spec.Tier)
	if err != nil {
		return nil, err
	}
	paces, err := scaler.NewPaces(spec.Distance, spec.Tier, spec.GoalTime)
	if err != nil {
		return nil, err
	}

	planID := req.PlanID
	if planID == uuid.Nil {
		planID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%+v|%+v", spec, req.Athlete)))
	}

	constraints := req.Constraints
	if spec.Distance.IsShort() {
		constraints.ExcludeTypes = append(append([]domain.IntensityType(nil), constraints.ExcludeTypes...), domain.IntensityMarathonPace)
	}

	b := &builder{
		g:           g,
		spec:        spec,
		athlete:     req.Athlete,
		constraints: constraints,
		paces:       paces,
		layout:      lay,
		planID:      planID,
	}

	targets := weeklyTargets(themed.Themes, peak)
	plan := &domain.Plan{
		ID:          planID,
		Spec:        spec,
		Athlete:     req.Athlete,
		PeakTarget:  peak,
		Phases:      phases,
		Themes:      themed.Themes,
		GeneratedAt: g.clock().UTC(),
	}

	prev := 0.0
	for i, theme := range themed.Themes {
		week := i + 1
		phase, _ := domain.PhaseFor(phases, week)
		limit := math.Inf(1)
		if i > 0 {
			limit = rampLimit(prev, i)
			if phase.Type == domain.PhaseRecovery && theme.Theme == domain.ThemeRecovery {
				limit = math.Min(limit, cutbackLimit(prev))
			}
		}
		wk, err := b.fitWeek(week, phase, theme, targets[i], limit)
		if err != nil {
			return nil, fmt.Errorf("week %d: %w", week, err)
		}
		prev = wk.volume

		plan.Workouts = append(plan.Workouts, wk.workouts...)
		plan.Audits = append(plan.Audits, wk.audits...)
		degradations = append(degradations, wk.degradations...)
		plan.WeeklyVolumes = append(plan.WeeklyVolumes, wk.volume)
	}
	plan.Degradations = degradations
	summarize(plan)
	b.holdEasyShare(plan)

	if err := Validate(plan); err != nil {
		g.log.Error().Err(err).Str("plan_id", planID.String()).Msg("generated plan failed validation")
		return nil, err
	}
	g.log.Info().
		Str("plan_id", planID.String()).
		Str("distance", string(spec.Distance)).
		Int("weeks", spec.Weeks).
		Str("tier", string(spec.Tier)).
		Float64("total_miles", plan.TotalMiles).
		Int("degradations", len(plan.Degradations)).
		Msg("plan generated")
	return plan, nil
}

// weeklyTargets converts theme fractions to miles and re-applies the ramp
// limits after rounding.
func weeklyTargets(ts []domain.WeekThemePlan, peak float64) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = round1(t.VolumeFraction * peak)
		if i > 0 {
			out[i] = math.Min(out[i], rampLimit(out[i-1], i))
		}
	}
	return out
}

// rampLimit is the highest volume allowed in the week after one of prev
// miles. i is the 1-based number of the earlier week.
func rampLimit(prev float64, i int) float64 {
	return math.Floor((prev*(1+volume.MaxIncrease(i))-0.05)*10) / 10
}

// CutbackRatio is the most a recovery week may hold relative to the week
// before it.
const CutbackRatio = 0.84

// cutbackLimit is the highest volume a recovery week after prev miles may
// hold.
func cutbackLimit(prev float64) float64 {
	return math.Floor(prev*CutbackRatio*10) / 10
}

func summarize(p *domain.Plan) {
	p.TotalMiles, p.PeakVolume, p.EasyMiles = 0, 0, 0
	for _, v := range p.WeeklyVolumes {
		p.TotalMiles += v
		p.PeakVolume = math.Max(p.PeakVolume, v)
	}
	for _, w := range p.Workouts {
		if w.IsGoalRace() {
			p.TotalMiles += w.DistanceMi
		}
		p.EasyMiles += w.EasyMiles()
	}
	p.TotalMiles = round1(p.TotalMiles)
	p.EasyMiles = round1(p.EasyMiles)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
