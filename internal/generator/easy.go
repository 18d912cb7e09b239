package generator

import (
	"fmt"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
)

// MinEasyShare is the smallest fraction of training mileage a plan may run
// at easy effort.
const MinEasyShare = 0.70

// holdEasyShare turns hard sessions into easy running of the same distance
// until the plan's easy share reaches MinEasyShare. Weeks with the lowest easy
// share give up a session first. Quality sessions and marathon-pace long runs
// go before tune-up races. Weekly volumes are unchanged.
func (b *builder) holdEasyShare(p *domain.Plan) {
	eased := 0
	for p.TrainingMiles() > 0 && p.EasyShare() < MinEasyShare {
		i := b.easyCandidate(p)
		if i < 0 {
			break
		}
		w := p.Workouts[i]
		kind, what := domain.DegradeReducedQuality, "quality session"
		switch {
		case w.Type == domain.WorkoutLong:
			what = "marathon-pace long run"
			b.easeLongRun(&p.Workouts[i])
		case w.Type == domain.WorkoutRace:
			kind, what = domain.DegradeSkippedTuneUp, "tune-up race"
			b.easeRun(&p.Workouts[i])
		default:
			b.easeRun(&p.Workouts[i])
		}
		dropDay(p, w.Week, w.Day)
		eased++
		p.Degradations = append(p.Degradations, domain.Degradation{
			Week:   w.Week,
			Day:    w.Day,
			Kind:   kind,
			Reason: fmt.Sprintf("%s run easy to keep easy mileage at %.0f%%", what, MinEasyShare*100),
		})
		summarize(p)
	}
	if eased > 0 {
		b.g.log.Info().Int("sessions", eased).Float64("easy_share", p.EasyShare()).Msg("hard sessions eased to hold easy share")
	}
}

// easyCandidate picks the last hard session of the week with the lowest easy
// share, or -1 when none is left.
func (b *builder) easyCandidate(p *domain.Plan) int {
	for _, tuneUps := range []bool{false, true} {
		best, bestShare := -1, 2.0
		for week := 1; week <= p.Spec.Weeks; week++ {
			ws := p.Workouts[(week-1)*7 : week*7]
			idx := -1
			total, easyMiles := 0.0, 0.0
			for d, w := range ws {
				if w.IsGoalRace() {
					continue
				}
				total += w.DistanceMi
				easyMiles += w.EasyMiles()
				if easeable(w, tuneUps) {
					idx = (week-1)*7 + d
				}
			}
			if idx < 0 || total <= 0 {
				continue
			}
			if share := easyMiles / total; share < bestShare {
				best, bestShare = idx, share
			}
		}
		if best >= 0 {
			return best
		}
	}
	return -1
}

func easeable(w domain.Workout, tuneUps bool) bool {
	if tuneUps {
		return w.Type == domain.WorkoutRace && w.Subtype == domain.SubtypeTuneUp
	}
	return w.Type == domain.WorkoutQuality ||
		(w.Type == domain.WorkoutLong && w.Subtype == domain.SubtypeMarathonPace)
}

func (b *builder) easeRun(w *domain.Workout) {
	w.Type = domain.WorkoutEasy
	w.Subtype = ""
	w.PaceZone = domain.PaceEasy
	w.Pace = b.paces.Format(domain.PaceEasy)
	w.DurationMin = round1(b.paces.Minutes(domain.PaceEasy, w.DistanceMi))
	w.Segments = nil
	w.TemplateID = ""
	w.StepKey = ""
	w.Notes = ""
}

func (b *builder) easeLongRun(w *domain.Workout) {
	w.Subtype = ""
	w.PaceZone = domain.PaceLong
	w.Pace = b.paces.Format(domain.PaceLong)
	w.DurationMin = round1(b.paces.Minutes(domain.PaceLong, w.DistanceMi))
	w.Segments = nil
}

// dropDay forgets the selection audit and placeholder note of a session that
// no longer exists.
func dropDay(p *domain.Plan, week, day int) {
	audits := p.Audits[:0]
	for _, a := range p.Audits {
		if a.Week != week || a.Day != day {
			audits = append(audits, a)
		}
	}
	p.Audits = audits

	degs := p.Degradations[:0]
	for _, d := range p.Degradations {
		if d.Kind != domain.DegradePlaceholderTemplate || d.Week != week || d.Day != day {
			degs = append(degs, d)
		}
	}
	p.Degradations = degs
}
