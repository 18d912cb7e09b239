package generator

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
	"github.com/Nmdk1/StrideIQ-sub003/internal/scaler"
	"github.com/Nmdk1/StrideIQ-sub003/internal/templates"
)

// LongRunDay is the designated long-run weekday. The goal race falls on the
// same day of week N.
const LongRunDay = 7

// minEasyMiles is the shortest easy run worth scheduling.
const minEasyMiles = 2.0

const (
	rest    = domain.WorkoutRest
	easy    = domain.WorkoutEasy
	quality = domain.WorkoutQuality
	long    = domain.WorkoutLong
)

// layout is the default day type for days 1..7.
type layout [7]domain.WorkoutType

var layouts = map[int]layout{
	2: {rest, rest, rest, quality, rest, rest, long},
	3: {rest, quality, rest, easy, rest, rest, long},
	4: {rest, quality, easy, rest, quality, rest, long},
	5: {rest, quality, easy, quality, rest, easy, long},
	6: {rest, quality, easy, quality, easy, easy, long},
}

// layoutFor returns the week skeleton for a days-per-week request. Seven
// days keep the six-day layout so the week still holds a rest day.
func layoutFor(days int) (layout, []domain.Degradation, error) {
	if days == 7 {
		return layouts[6], []domain.Degradation{{
			Kind:   domain.DegradeDroppedEasyDay,
			Reason: "7 running days requested; day 1 kept as rest",
		}}, nil
	}
	l, ok := layouts[days]
	if !ok {
		return layout{}, nil, fmt.Errorf("%w: %d running day(s) cannot hold a long run, a quality day and a rest day",
			domain.ErrUnsatisfiableConstraint, days)
	}
	return l, nil, nil
}

// qualityCount is how many quality sessions a week of theme holds,
// long-run marathon-pace work included.
func qualityCount(theme domain.Theme, tier domain.Tier) int {
	switch theme {
	case domain.ThemeRebuildEasy, domain.ThemeRebuildStrides, domain.ThemeTuneUpRace:
		return 0
	case domain.ThemeBuildThreshold, domain.ThemeBuildMarathonPace, domain.ThemeBuildIntervals, domain.ThemePeak:
		if tier == domain.TierBuilder {
			return 1
		}
		return 2
	}
	return 1
}

// relax is how far a week may fall back from its theme to stay under a
// volume limit.
type relax int

const (
	relaxNone relax = iota
	// relaxQuality runs every quality slot easy.
	relaxQuality
	// relaxTuneUp also leaves the tune-up race out.
	relaxTuneUp
)

type slot struct {
	typ     domain.WorkoutType
	subtype string
	tuneUp  *domain.TuneUpRace
}

// builder carries the per-call state of one Generate run.
type builder struct {
	g           *Generator
	spec        domain.PlanSpec
	athlete     domain.AthleteConstraints
	constraints templates.Constraints
	paces       scaler.Paces
	layout      layout
	planID      uuid.UUID
	// recent is every template id used so far, oldest first.
	recent []string
}

type week struct {
	workouts     []domain.Workout
	inputs       []scaler.Input
	audits       []domain.SelectionAudit
	degradations []domain.Degradation
	volume       float64
}

// slots lays out the day types of one week.
func (b *builder) slots(n int, theme domain.WeekThemePlan, r relax) ([7]slot, []domain.Degradation) {
	var s [7]slot
	for i, t := range b.layout {
		s[i] = slot{typ: t}
	}
	var degs []domain.Degradation

	want := qualityCount(theme.Theme, b.spec.Tier)
	if r >= relaxQuality {
		want = 0
	}
	if !b.spec.Distance.IsShort() && want > 0 &&
		(theme.Theme == domain.ThemeBuildMarathonPace || theme.Theme == domain.ThemePeak) {
		s[LongRunDay-1].subtype = domain.SubtypeMarathonPace
		want--
	}

	switch theme.Theme {
	case domain.ThemeRace:
		s[LongRunDay-1] = slot{typ: domain.WorkoutRace, subtype: domain.SubtypeGoalRace}
		if s[5].typ == easy {
			s[5].subtype = domain.SubtypeShakeout
		}
	case domain.ThemeTuneUpRace:
		if race, day, ok := b.tuneUpIn(n); ok && r < relaxTuneUp {
			s[day-1] = slot{typ: domain.WorkoutRace, subtype: domain.SubtypeTuneUp, tuneUp: &race}
		}
	}

	have := 0
	for i := range s {
		if s[i].typ != quality {
			continue
		}
		if have < want {
			have++
			continue
		}
		s[i].typ = easy
	}
	if have < want {
		degs = append(degs, domain.Degradation{
			Week:   n,
			Kind:   domain.DegradeReducedQuality,
			Reason: fmt.Sprintf("%d quality session(s) wanted, %d running days leave room for %d", want, b.spec.DaysPerWeek, have),
		})
	}

	ensureRest(&s)

	// The day after a hard session is run at recovery effort.
	for i := 1; i < len(s); i++ {
		if s[i].typ == easy && s[i].subtype == "" && hard(s[i-1]) {
			s[i].typ = domain.WorkoutRecovery
		}
	}

	if theme.Theme == domain.ThemeRebuildStrides {
		strides := 0
		for i := range s {
			if strides < 2 && s[i].subtype == "" && (s[i].typ == easy || s[i].typ == domain.WorkoutRecovery) {
				s[i] = slot{typ: easy, subtype: domain.SubtypeStrides}
				strides++
			}
		}
	}
	return s, degs
}

func hard(s slot) bool {
	return s.typ == quality || s.typ == domain.WorkoutRace ||
		(s.typ == long && s.subtype == domain.SubtypeMarathonPace)
}

// ensureRest moves the rest day when a tune-up race displaced the only one.
func ensureRest(s *[7]slot) {
	race := -1
	for i := range s {
		if s[i].typ == rest {
			return
		}
		if s[i].typ == domain.WorkoutRace {
			race = i
		}
	}
	for i := race + 1; i < len(s); i++ {
		if s[i].typ == easy {
			s[i] = slot{typ: rest}
			return
		}
	}
	for i := race - 1; i >= 0; i-- {
		if s[i].typ == easy {
			s[i] = slot{typ: rest}
			return
		}
	}
}

// tuneUpIn finds the first tune-up race located in week n.
func (b *builder) tuneUpIn(n int) (domain.TuneUpRace, int, bool) {
	for _, r := range b.athlete.TuneUps {
		if w, day, ok := b.spec.Locate(r.Date); ok && w == n {
			return r, day, true
		}
	}
	return domain.TuneUpRace{}, 0, false
}

// buildWeek fills every day of week n. Fixed sessions are scaled first and
// whatever is left of target is spread across the easy days.
func (b *builder) buildWeek(n int, phase domain.Phase, theme domain.WeekThemePlan, target float64, r relax) (*week, error) {
	s, degs := b.slots(n, theme, r)
	wk := &week{
		workouts:     make([]domain.Workout, 7),
		inputs:       make([]scaler.Input, 7),
		degradations: degs,
	}
	base := scaler.Input{
		WeeklyMiles: target,
		Tier:        b.spec.Tier,
		Phase:       phase.Type,
		WeekInPhase: phase.WeekInPhase(n),
		PhaseWeeks:  phase.Weeks(),
		Distance:    b.spec.Distance,
		Paces:       b.paces,
	}

	var easyDays []int
	longDay := -1
	for i, sl := range s {
		day := i + 1
		wk.workouts[i] = domain.Workout{
			ID:    uuid.NewSHA1(b.planID, []byte(fmt.Sprintf("%d/%d", n, day))),
			Week:  n,
			Day:   day,
			Date:  b.spec.DateOf(n, day),
			Phase: phase.Type,
			Theme: theme.Theme,
		}
		in := base
		in.Type = sl.typ
		in.Subtype = sl.subtype

		switch {
		case sl.typ == quality:
			if err := b.fillQuality(wk, i, in); err != nil {
				return nil, err
			}
			continue
		case sl.typ == domain.WorkoutRace && sl.tuneUp != nil:
			in.RaceDistance = sl.tuneUp.Distance
			wk.workouts[i].Notes = theme.Notes
		case sl.typ == long:
			longDay = i
		case (sl.typ == easy || sl.typ == domain.WorkoutRecovery) && sl.subtype != domain.SubtypeShakeout:
			wk.inputs[i] = in
			easyDays = append(easyDays, i)
			continue
		}
		if err := b.fill(wk, i, in); err != nil {
			return nil, err
		}
	}

	fixed := 0.0
	for _, w := range wk.workouts {
		if !w.IsGoalRace() {
			fixed += w.DistanceMi
		}
	}
	remaining := target - fixed
	for len(easyDays) > 0 && remaining/float64(len(easyDays)) < minEasyMiles {
		last := easyDays[len(easyDays)-1]
		easyDays = easyDays[:len(easyDays)-1]
		if err := b.fill(wk, last, scaler.Input{Type: rest}); err != nil {
			return nil, err
		}
	}

	switch {
	case len(easyDays) == 0 && longDay >= 0 && math.Abs(remaining) >= 0.1:
		in := wk.inputs[longDay]
		in.Miles = math.Max(minEasyMiles, wk.workouts[longDay].DistanceMi+remaining)
		if err := b.fill(wk, longDay, in); err != nil {
			return nil, err
		}
	case len(easyDays) > 0:
		ceiling := scaler.LongRunShare(b.spec.Distance) * target
		if longDay >= 0 {
			ceiling = wk.workouts[longDay].DistanceMi
		}
		per := round1(math.Min(ceiling, remaining/float64(len(easyDays))))
		left := remaining
		for k, i := range easyDays {
			miles := per
			if k == len(easyDays)-1 {
				miles = round1(math.Min(ceiling, left))
			}
			left -= miles
			in := wk.inputs[i]
			in.Miles = miles
			if err := b.fill(wk, i, in); err != nil {
				return nil, err
			}
		}
	}

	if err := b.capMainSets(wk); err != nil {
		return nil, err
	}
	wk.volume = weekVolume(wk.workouts)
	return wk, nil
}

// capMainSets rescales the quality sessions when a main set outgrew its share
// of the week as built. Easy days and long runs can fall short of the target,
// so the built week is what the caps are held against.
func (b *builder) capMainSets(wk *week) error {
	built := weekVolume(wk.workouts)
	others := built
	var idx []int
	over := false
	for i, w := range wk.workouts {
		if w.Type != quality {
			continue
		}
		idx = append(idx, i)
		others -= w.HardMiles()
		if w.HardMiles() > MainSetCeiling(w, built) {
			over = true
		}
	}
	if !over || others <= 0 {
		return nil
	}
	for _, i := range idx {
		in := wk.inputs[i]
		in.MainSetMiles = others
		if err := b.fill(wk, i, in); err != nil {
			return err
		}
	}
	return nil
}

// MainSetCeiling is the most main-set mileage quality workout w may hold in a
// week of weekly miles.
func MainSetCeiling(w domain.Workout, weekly float64) float64 {
	return scaler.MainSetShare(domain.IntensityType(w.Subtype)) * weekly
}

func (b *builder) fill(wk *week, i int, in scaler.Input) error {
	p, err := scaler.Scale(in)
	if err != nil {
		return fmt.Errorf("day %d: %w", i+1, err)
	}
	p.Fill(&wk.workouts[i])
	if len(p.Clamps) > 0 {
		wk.workouts[i].Notes = strings.Join(p.Clamps, "; ")
	}
	wk.inputs[i] = in
	return nil
}

// fillQuality selects a template for a quality slot, falling back to a
// placeholder session when none is eligible.
func (b *builder) fillQuality(wk *week, i int, in scaler.Input) error {
	w := &wk.workouts[i]
	sel, err := b.g.selector.Select(templates.Request{
		Phase:       in.Phase,
		WeekInPhase: in.WeekInPhase,
		PhaseWeeks:  in.PhaseWeeks,
		Recent:      b.recent,
		Constraints: b.constraints,
	})
	audit := sel.Audit
	audit.Week, audit.Day = w.Week, w.Day

	switch {
	case errors.Is(err, domain.ErrTemplateUnavailable):
		audit.Placeholder = true
		reason := err.Error()
		b.g.log.Warn().Int("week", w.Week).Int("day", w.Day).Str("reason", reason).Msg("no eligible template, using placeholder")
		wk.degradations = append(wk.degradations, domain.Degradation{
			Week:   w.Week,
			Day:    w.Day,
			Kind:   domain.DegradePlaceholderTemplate,
			Reason: reason,
		})
	case err != nil:
		return fmt.Errorf("day %d: %w", w.Day, err)
	default:
		in.Template = &sel.Template
		in.Step = sel.Step
		if audit.DontRepeatWindowRelaxed || audit.DontFollowRelaxed {
			b.g.log.Info().Int("week", w.Week).Int("day", w.Day).Str("template", sel.Template.ID).
				Bool("dont_repeat_relaxed", audit.DontRepeatWindowRelaxed).
				Bool("dont_follow_relaxed", audit.DontFollowRelaxed).
				Msg("anti-repetition window relaxed")
		}
	}
	wk.audits = append(wk.audits, audit)

	if err := b.fill(wk, i, in); err != nil {
		return err
	}
	if in.Template != nil {
		w.TemplateID = sel.Template.ID
		w.StepKey = sel.Step.Key
		b.recent = append(b.recent, sel.Template.ID)
	}
	return nil
}

// fitSteps bounds how many times a week is rebuilt at a lower target before
// falling back to the next relax level.
const fitSteps = 40

// fitWeek builds week n at target and lowers it until its volume is at or
// under limit. It first shrinks the target, then runs quality easy, then
// drops a tune-up race. Template selection does not depend on the target,
// so every rebuild picks the same templates.
func (b *builder) fitWeek(n int, phase domain.Phase, theme domain.WeekThemePlan, target, limit float64) (*week, error) {
	mark := len(b.recent)
	for r := relaxNone; r <= relaxTuneUp; r++ {
		if r == relaxTuneUp && theme.Theme != domain.ThemeTuneUpRace {
			break
		}
		miles := target
		for step := 0; step < fitSteps; step++ {
			b.recent = b.recent[:mark]
			wk, err := b.buildWeek(n, phase, theme, miles, r)
			if err != nil {
				return nil, err
			}
			if wk.volume <= limit {
				if miles < target {
					b.g.log.Debug().Int("week", n).Float64("target", target).Float64("built_for", miles).
						Float64("limit", limit).Msg("week lowered to volume limit")
				}
				wk.degradations = append(wk.degradations, relaxDegradations(n, r, limit)...)
				return wk, nil
			}
			miles = round1(math.Min(miles*0.97, miles*limit/wk.volume))
			if miles <= 0 {
				break
			}
		}
	}
	return nil, violation("week %d cannot be held under %.1f mi", n, limit)
}

func relaxDegradations(n int, r relax, limit float64) []domain.Degradation {
	var degs []domain.Degradation
	if r >= relaxQuality {
		degs = append(degs, domain.Degradation{
			Week:   n,
			Kind:   domain.DegradeReducedQuality,
			Reason: fmt.Sprintf("quality sessions run easy to hold the week under %.1f mi", limit),
		})
	}
	if r >= relaxTuneUp {
		degs = append(degs, domain.Degradation{
			Week:   n,
			Kind:   domain.DegradeSkippedTuneUp,
			Reason: fmt.Sprintf("tune-up race left out to hold the week under %.1f mi", limit),
		})
	}
	return degs
}

// weekVolume is the week's mileage without the goal race.
func weekVolume(ws []domain.Workout) float64 {
	total := 0.0
	for _, w := range ws {
		if !w.IsGoalRace() {
			total += w.DistanceMi
		}
	}
	return round1(total)
}
