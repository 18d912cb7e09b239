package domain

import (
	"time"

	"github.com/google/uuid"
)

// Phase is a contiguous span of weeks sharing one emphasis.
type Phase struct {
	Type      PhaseType `json:"type"`
	StartWeek int       `json:"start_week"`
	EndWeek   int       `json:"end_week"`
	// VolumeFractions holds one fraction of peak volume per week in the phase.
	VolumeFractions []float64 `json:"volume_fractions"`
}

// Weeks returns the number of weeks in the phase.
func (p Phase) Weeks() int { return p.EndWeek - p.StartWeek + 1 }

func (p Phase) Contains(week int) bool { return week >= p.StartWeek && week <= p.EndWeek }

// WeekInPhase is the 1-based position of week inside the phase.
func (p Phase) WeekInPhase(week int) int { return week - p.StartWeek + 1 }

// PhaseFor returns the phase that contains week.
func PhaseFor(phases []Phase, week int) (Phase, bool) {
	for _, p := range phases {
		if p.Contains(week) {
			return p, true
		}
	}
	return Phase{}, false
}

// WeekThemePlan is the emphasis of a single week.
type WeekThemePlan struct {
	Week           int     `json:"week"`
	Theme          Theme   `json:"theme"`
	VolumeFraction float64 `json:"volume_fraction"`
	Notes          string  `json:"notes,omitempty"`
}

// Segment is one contiguous piece of a workout.
type Segment struct {
	Label       string   `json:"label"`
	Reps        int      `json:"reps,omitempty"`
	DistanceMi  float64  `json:"distance_mi,omitempty"`
	DurationMin float64  `json:"duration_min,omitempty"`
	Zone        PaceZone `json:"zone"`
	Pace        string   `json:"pace,omitempty"`
	RecoveryMin float64  `json:"recovery_min,omitempty"`
}

// Miles is the total distance covered by the segment, reps included.
func (s Segment) Miles() float64 {
	if s.Reps > 0 {
		return float64(s.Reps) * s.DistanceMi
	}
	return s.DistanceMi
}

// Workout is one scheduled day. Immutable once emitted.
type Workout struct {
	ID          uuid.UUID   `json:"id"`
	Week        int         `json:"week"`
	Day         int         `json:"day"`
	Date        time.Time   `json:"date,omitempty"`
	Phase       PhaseType   `json:"phase"`
	Theme       Theme       `json:"theme"`
	Type        WorkoutType `json:"type"`
	Subtype     string      `json:"subtype,omitempty"`
	DistanceMi  float64     `json:"distance_mi"`
	DurationMin float64     `json:"duration_min"`
	PaceZone    PaceZone    `json:"pace_zone,omitempty"`
	Pace        string      `json:"pace,omitempty"`
	Segments    []Segment   `json:"segments,omitempty"`
	TemplateID  string      `json:"template_id,omitempty"`
	StepKey     string      `json:"step_key,omitempty"`
	Notes       string      `json:"notes,omitempty"`
}

// IsQuality reports whether the workout counts as an above-easy session.
func (w Workout) IsQuality() bool {
	switch w.Type {
	case WorkoutQuality, WorkoutRace:
		return true
	case WorkoutLong:
		return w.Subtype == SubtypeMarathonPace
	}
	return false
}

// IsGoalRace is true for the race the plan builds toward.
func (w Workout) IsGoalRace() bool { return w.Type == WorkoutRace && w.Subtype == SubtypeGoalRace }

// EasyMiles is the part of the workout run at easy effort.
func (w Workout) EasyMiles() float64 {
	switch w.Type {
	case WorkoutRest, WorkoutRace:
		return 0
	case WorkoutEasy, WorkoutRecovery:
		return w.DistanceMi
	}
	if len(w.Segments) == 0 {
		if w.PaceZone.IsEasy() {
			return w.DistanceMi
		}
		return 0
	}
	easy := 0.0
	for _, s := range w.Segments {
		if s.Zone.IsEasy() {
			easy += s.Miles()
		}
	}
	return easy
}

// HardMiles is the part of a workout's segments run above easy effort.
func (w Workout) HardMiles() float64 {
	hard := 0.0
	for _, s := range w.Segments {
		if !s.Zone.IsEasy() {
			hard += s.Miles()
		}
	}
	return hard
}

// Degradation records a legitimate fallback taken during generation.
type Degradation struct {
	Week   int    `json:"week,omitempty"`
	Day    int    `json:"day,omitempty"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// Degradation kinds.
const (
	DegradeDroppedEasyDay      = "dropped_easy_day"
	DegradePlaceholderTemplate = "placeholder_template"
	DegradeReducedQuality      = "reduced_quality"
	DegradeSkippedTuneUp       = "skipped_tune_up"
)

// Plan is the aggregate root produced by one generation call. A
// regeneration replaces the whole aggregate.
type Plan struct {
	ID            uuid.UUID          `json:"id"`
	Spec          PlanSpec           `json:"spec"`
	Athlete       AthleteConstraints `json:"athlete"`
	PeakTarget    float64            `json:"peak_target_mi"`
	Phases        []Phase            `json:"phases"`
	Themes        []WeekThemePlan    `json:"themes"`
	Workouts      []Workout          `json:"workouts"`
	WeeklyVolumes []float64          `json:"weekly_volumes"`
	PeakVolume    float64            `json:"peak_volume"`
	TotalMiles    float64            `json:"total_miles"`
	EasyMiles     float64            `json:"easy_miles"`
	Audits        []SelectionAudit   `json:"audits"`
	Degradations  []Degradation      `json:"degradations,omitempty"`
	GeneratedAt   time.Time          `json:"generated_at"`
}

// Week returns the workouts scheduled in week, ordered by day.
func (p *Plan) Week(week int) []Workout {
	var out []Workout
	for _, w := range p.Workouts {
		if w.Week == week {
			out = append(out, w)
		}
	}
	return out
}

// TrainingMiles is the total mileage without the goal race.
func (p *Plan) TrainingMiles() float64 {
	total := p.TotalMiles
	for _, w := range p.Workouts {
		if w.IsGoalRace() {
			total -= w.DistanceMi
		}
	}
	return total
}

// EasyShare is the fraction of training mileage run at easy effort. The goal
// race is the point of the plan, not part of the training load.
func (p *Plan) EasyShare() float64 {
	training := p.TrainingMiles()
	if training <= 0 {
		return 0
	}
	return p.EasyMiles / training
}
