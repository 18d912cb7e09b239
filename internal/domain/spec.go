package domain

import (
	"fmt"
	"time"
)

// MaxWeeks bounds plan length; anything longer is treated as malformed.
const MaxWeeks = 52

// PlanSpec is the immutable input of one generation call.
type PlanSpec struct {
	Distance    Distance      `json:"distance"`
	GoalDate    time.Time     `json:"goal_date,omitempty"`
	Weeks       int           `json:"weeks"`
	DaysPerWeek int           `json:"days_per_week"`
	Tier        Tier          `json:"tier"`
	GoalTime    time.Duration `json:"goal_time,omitempty"`
}

// Validate rejects structurally invalid specs with ErrInvalidInput.
func (s PlanSpec) Validate() error {
	if !s.Distance.Valid() {
		return fmt.Errorf("%w: unknown distance %q", ErrInvalidInput, s.Distance)
	}
	if s.Weeks <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %d weeks", ErrInvalidInput, s.Weeks)
	}
	if s.Weeks > MaxWeeks {
		return fmt.Errorf("%w: duration %d exceeds %d weeks", ErrInvalidInput, s.Weeks, MaxWeeks)
	}
	if !s.Tier.Valid() {
		return fmt.Errorf("%w: unknown tier %q", ErrInvalidInput, s.Tier)
	}
	if s.DaysPerWeek < 1 || s.DaysPerWeek > 7 {
		return fmt.Errorf("%w: days per week must be 1-7, got %d", ErrInvalidInput, s.DaysPerWeek)
	}
	if s.GoalTime < 0 {
		return fmt.Errorf("%w: negative goal time", ErrInvalidInput)
	}
	return nil
}

// StartDate is the first day of week 1. The race falls on day 7 of week N.
// Zero when no goal date was given.
func (s PlanSpec) StartDate() time.Time {
	if s.GoalDate.IsZero() {
		return time.Time{}
	}
	return civil(s.GoalDate).AddDate(0, 0, -(7*s.Weeks - 1))
}

// Locate returns the 1-based week and day-of-week that contain date.
// ok is false when the plan has no goal date or date is outside the plan.
func (s PlanSpec) Locate(date time.Time) (week, day int, ok bool) {
	start := s.StartDate()
	if start.IsZero() || date.IsZero() {
		return 0, 0, false
	}
	days := int(civil(date).Sub(start).Hours() / 24)
	if days < 0 || days >= 7*s.Weeks {
		return 0, 0, false
	}
	return days/7 + 1, days%7 + 1, true
}

// DateOf returns the calendar date of a week/day slot, or zero time.
func (s PlanSpec) DateOf(week, day int) time.Time {
	start := s.StartDate()
	if start.IsZero() {
		return time.Time{}
	}
	return start.AddDate(0, 0, (week-1)*7+day-1)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TuneUpRace is a shorter race scheduled inside the plan.
type TuneUpRace struct {
	Date     time.Time     `json:"date"`
	Distance Distance      `json:"distance"`
	Purpose  TuneUpPurpose `json:"purpose"`
}

// AthleteConstraints is the read-only athlete state summary.
type AthleteConstraints struct {
	// Tau1Days is the recovery half-life. Zero means unknown.
	Tau1Days float64 `json:"tau1_days,omitempty"`

	// Experience is carried through to the stored plan for display. The
	// engine reads volume experience from PlanSpec.Tier instead.
	Experience string `json:"experience,omitempty"`

	InjuryReturn bool `json:"injury_return"`

	// WeeksSincePeak shortens the injury-return rebuild when small.
	WeeksSincePeak     int          `json:"weeks_since_peak,omitempty"`
	CurrentVolumeRatio float64      `json:"current_volume_ratio,omitempty"`
	TuneUps            []TuneUpRace `json:"tune_ups,omitempty"`
}

// FastAdapter and SlowAdapter split athletes by recovery half-life.
func (a AthleteConstraints) FastAdapter() bool { return a.Tau1Days > 0 && a.Tau1Days < 30 }
func (a AthleteConstraints) SlowAdapter() bool { return a.Tau1Days > 45 }
