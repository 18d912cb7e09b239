package generator

import (
	"fmt"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
	"github.com/Nmdk1/StrideIQ-sub003/internal/scaler"
	"github.com/Nmdk1/StrideIQ-sub003/internal/volume"
)

const (
	// cutbackFloor is the share of the week before that a recovery week
	// must stay under.
	cutbackFloor = 0.85
	// mainSetSlack absorbs rounding of rep distances.
	mainSetSlack = 0.05
)

// Validate checks the structural invariants every emitted plan must hold.
// Any failure wraps domain.ErrInvariantViolation.
func Validate(p *domain.Plan) error {
	n := p.Spec.Weeks
	if err := volume.CheckPartition(p.Phases, n); err != nil {
		return err
	}
	if len(p.Themes) != n {
		return violation("%d themes for %d weeks", len(p.Themes), n)
	}
	for i, t := range p.Themes {
		if t.Week != i+1 {
			return violation("theme %d is for week %d", i+1, t.Week)
		}
	}
	if len(p.WeeklyVolumes) != n {
		return violation("%d weekly volumes for %d weeks", len(p.WeeklyVolumes), n)
	}
	if len(p.Workouts) != 7*n {
		return violation("%d workouts for %d weeks", len(p.Workouts), n)
	}

	for week := 1; week <= n; week++ {
		if err := validateWeek(p, week); err != nil {
			return err
		}
	}

	v := p.WeeklyVolumes
	for i := 1; i < len(v); i++ {
		if v[i] <= v[i-1] || v[i-1] == 0 {
			continue
		}
		if rise := (v[i] - v[i-1]) / v[i-1]; rise > volume.MaxIncrease(i) {
			return violation("week %d volume rises %.1f%% over week %d", i+1, rise*100, i)
		}
	}
	for i := 1; i < len(v); i++ {
		phase, _ := domain.PhaseFor(p.Phases, i+1)
		if phase.Type == domain.PhaseRecovery && p.Themes[i].Theme == domain.ThemeRecovery && v[i] >= cutbackFloor*v[i-1] {
			return violation("recovery week %d holds %.1f mi after %.1f mi", i+1, v[i], v[i-1])
		}
	}
	if p.TrainingMiles() > 0 && p.EasyShare() < MinEasyShare {
		return violation("easy running is %.0f%% of training mileage", p.EasyShare()*100)
	}

	last := p.Workouts[len(p.Workouts)-1]
	if !last.IsGoalRace() || last.Day != LongRunDay {
		return violation("plan does not end with the goal race on day %d", LongRunDay)
	}
	return nil
}

func validateWeek(p *domain.Plan, week int) error {
	ws := p.Workouts[(week-1)*7 : week*7]
	phase, _ := domain.PhaseFor(p.Phases, week)
	theme := p.Themes[week-1].Theme

	rests := 0
	prevQuality := 0
	for i, w := range ws {
		if w.Week != week || w.Day != i+1 {
			return violation("workout for week %d day %d found at week %d day %d", w.Week, w.Day, week, i+1)
		}
		if w.Type == domain.WorkoutRest {
			rests++
		}
		if w.Type == domain.WorkoutLong {
			if w.Day != LongRunDay && !theme.IsTaper() && theme != domain.ThemeRace {
				return violation("week %d long run on day %d", week, w.Day)
			}
			if ceiling := scaler.LongRunCap(p.Spec.Tier); w.DistanceMi > ceiling {
				return violation("week %d long run %.1f mi over the %.0f mi cap", week, w.DistanceMi, ceiling)
			}
		}
		for _, s := range w.Segments {
			if s.Zone != domain.PaceMarathon {
				continue
			}
			if phase.Type == domain.PhaseBase {
				return violation("week %d day %d has marathon-pace work in a base phase", week, w.Day)
			}
			if s.DistanceMi > scaler.MaxMarathonPaceMiles {
				return violation("week %d day %d marathon-pace segment of %.1f mi", week, w.Day, s.DistanceMi)
			}
		}
		if phase.Type == domain.PhaseBase && w.Subtype == domain.SubtypeMarathonPace {
			return violation("week %d day %d is a marathon-pace session in a base phase", week, w.Day)
		}
		if w.Type == domain.WorkoutQuality {
			if ceiling := MainSetCeiling(w, p.WeeklyVolumes[week-1]); w.HardMiles() > ceiling+mainSetSlack {
				return violation("week %d day %d main set of %.1f mi over %.1f mi", week, w.Day, w.HardMiles(), ceiling)
			}
		}
		if w.IsQuality() {
			if prevQuality > 0 && w.Day-prevQuality < 2 {
				return violation("week %d quality on days %d and %d back to back", week, prevQuality, w.Day)
			}
			prevQuality = w.Day
		}
	}
	if rests == 0 {
		return violation("week %d has no rest day", week)
	}
	return nil
}

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvariantViolation, fmt.Sprintf(format, args...))
}
