// Package themes assigns one emphasis per week on top of the phase layout,
// reacting to injury return and tune-up races.
package themes

import (
	"fmt"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
	"github.com/Nmdk1/StrideIQ-sub003/internal/volume"
)

// TuneUpFactor scales a tune-up week's volume.
const TuneUpFactor = 0.85

// RebuildRatio is the current/peak volume ratio under which an injured
// athlete starts with rebuild weeks.
const RebuildRatio = 0.5

// rebuildCaps are the fraction-of-peak ceilings for consecutive rebuild
// weeks.
var rebuildCaps = []float64{0.40, 0.55, 0.70}

// RecentPeakWeeks is the layoff, in weeks since peak volume, short enough
// for a two-week rebuild.
const RecentPeakWeeks = 4

// Input is everything Generate reads.
type Input struct {
	Phases  []domain.Phase
	Athlete domain.AthleteConstraints
	Spec    domain.PlanSpec
}

// Result carries the weekly themes and any tune-up races that could not be
// placed.
type Result struct {
	Themes  []domain.WeekThemePlan
	Skipped []domain.Degradation
}

// Generate returns exactly one theme per week of the plan. It is a pure
// function of its input.
func Generate(in Input) (Result, error) {
	weeks := in.Spec.Weeks
	if err := volume.CheckPartition(in.Phases, weeks); err != nil {
		return Result{}, err
	}

	types := make([]domain.PhaseType, 0, weeks)
	for _, p := range in.Phases {
		for w := p.StartWeek; w <= p.EndWeek; w++ {
			types = append(types, p.Type)
		}
	}
	fractions := volume.Fractions(in.Phases)
	start := fractions[0]

	out := make([]domain.WeekThemePlan, weeks)
	lastTaper := 0
	for i, t := range types {
		if t == domain.PhaseTaper {
			lastTaper = i
		}
	}
	for i, t := range types {
		theme, err := themeFor(t, i == lastTaper)
		if err != nil {
			return Result{}, err
		}
		out[i] = domain.WeekThemePlan{Week: i + 1, Theme: theme}
	}

	if needsRebuild(in.Athlete) {
		for i := 0; i < rebuildWeeks(in.Athlete) && i < weeks && types[i] == domain.PhaseBase; i++ {
			out[i].Theme = domain.ThemeRebuildStrides
			if i == 0 {
				out[i].Theme = domain.ThemeRebuildEasy
			}
			if fractions[i] > rebuildCaps[i] {
				fractions[i] = rebuildCaps[i]
			}
			out[i].Notes = fmt.Sprintf("return from injury: volume capped at %.0f%% of peak", rebuildCaps[i]*100)
		}
	}
	fractions = volume.Taper(types, volume.ClampRamp(fractions), start)

	var res Result
	for _, race := range in.Athlete.TuneUps {
		week, _, ok := in.Spec.Locate(race.Date)
		if !ok || week >= weeks {
			res.Skipped = append(res.Skipped, domain.Degradation{
				Week:   week,
				Kind:   domain.DegradeSkippedTuneUp,
				Reason: fmt.Sprintf("tune-up %s on %s falls outside weeks 1-%d", race.Distance, race.Date.Format("2006-01-02"), weeks-1),
			})
			continue
		}
		i := week - 1
		if out[i].Theme == domain.ThemeTuneUpRace {
			res.Skipped = append(res.Skipped, domain.Degradation{
				Week:   week,
				Kind:   domain.DegradeSkippedTuneUp,
				Reason: fmt.Sprintf("week %d already holds a tune-up race", week),
			})
			continue
		}
		out[i].Theme = domain.ThemeTuneUpRace
		out[i].Notes = tuneUpNote(race)
		fractions[i] *= TuneUpFactor
	}
	fractions = volume.ClampRamp(fractions)

	for i := range out {
		out[i].VolumeFraction = fractions[i]
	}
	res.Themes = out
	return res, nil
}

func needsRebuild(a domain.AthleteConstraints) bool {
	return a.InjuryReturn && a.CurrentVolumeRatio < RebuildRatio
}

// rebuildWeeks is how many weeks the rebuild lasts. An athlete who held peak
// volume within the last few weeks skips the 70% step. Zero means unknown
// and gets the full rebuild.
func rebuildWeeks(a domain.AthleteConstraints) int {
	if a.WeeksSincePeak > 0 && a.WeeksSincePeak <= RecentPeakWeeks {
		return len(rebuildCaps) - 1
	}
	return len(rebuildCaps)
}

func themeFor(t domain.PhaseType, lastTaper bool) (domain.Theme, error) {
	switch t {
	case domain.PhaseBase:
		return domain.ThemeBase, nil
	case domain.PhaseThreshold:
		return domain.ThemeBuildThreshold, nil
	case domain.PhaseMarathonPace:
		return domain.ThemeBuildMarathonPace, nil
	case domain.PhaseIntervals:
		return domain.ThemeBuildIntervals, nil
	case domain.PhaseRecovery:
		return domain.ThemeRecovery, nil
	case domain.PhasePeak:
		return domain.ThemePeak, nil
	case domain.PhaseTaper:
		if lastTaper {
			return domain.ThemeTaper2, nil
		}
		return domain.ThemeTaper1, nil
	case domain.PhaseRace:
		return domain.ThemeRace, nil
	}
	return "", fmt.Errorf("%w: unhandled phase type %q", domain.ErrInvariantViolation, t)
}

func tuneUpNote(r domain.TuneUpRace) string {
	switch r.Purpose {
	case domain.TuneUpThreshold:
		return fmt.Sprintf("%s tune-up: hard effort, race it as a threshold stimulus", r.Distance)
	case domain.TuneUpSharpening:
		return fmt.Sprintf("%s tune-up: controlled effort, sharpen without emptying the tank", r.Distance)
	}
	return fmt.Sprintf("%s tune-up race", r.Distance)
}
