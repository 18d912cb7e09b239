package domain

import (
	"errors"
	"testing"
	"time"
)

func TestPlanSpecValidate(t *testing.T) {
	valid := PlanSpec{Distance: DistanceMarathon, Weeks: 18, DaysPerWeek: 6, Tier: TierMid}

	tests := []struct {
		name    string
		mutate  func(s *PlanSpec)
		wantErr bool
	}{
		{"valid", func(s *PlanSpec) {}, false},
		{"zero weeks", func(s *PlanSpec) { s.Weeks = 0 }, true},
		{"negative weeks", func(s *PlanSpec) { s.Weeks = -3 }, true},
		{"too many weeks", func(s *PlanSpec) { s.Weeks = MaxWeeks + 1 }, true},
		{"unknown distance", func(s *PlanSpec) { s.Distance = "50k" }, true},
		{"unknown tier", func(s *PlanSpec) { s.Tier = "elite" }, true},
		{"zero days", func(s *PlanSpec) { s.DaysPerWeek = 0 }, true},
		{"eight days", func(s *PlanSpec) { s.DaysPerWeek = 8 }, true},
		{"one day is structurally valid", func(s *PlanSpec) { s.DaysPerWeek = 1 }, false},
		{"negative goal time", func(s *PlanSpec) { s.GoalTime = -time.Minute }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("Expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestParseDistance(t *testing.T) {
	tests := []struct {
		in   string
		want Distance
	}{
		{"5k", Distance5K},
		{"10K", Distance10K},
		{"half_marathon", DistanceHalf},
		{" marathon ", DistanceMarathon},
	}
	for _, tt := range tests {
		got, err := ParseDistance(tt.in)
		if err != nil {
			t.Errorf("ParseDistance(%q) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDistance(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParseDistance("ultra"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for unknown distance, got %v", err)
	}
}

func TestLocate(t *testing.T) {
	race := time.Date(2026, time.April, 19, 9, 30, 0, 0, time.UTC)
	spec := PlanSpec{Distance: DistanceMarathon, GoalDate: race, Weeks: 18, DaysPerWeek: 6, Tier: TierMid}

	week, day, ok := spec.Locate(race)
	if !ok || week != 18 || day != 7 {
		t.Errorf("race day located at week %d day %d (ok=%v), want week 18 day 7", week, day, ok)
	}

	week, day, ok = spec.Locate(spec.StartDate())
	if !ok || week != 1 || day != 1 {
		t.Errorf("start located at week %d day %d (ok=%v), want week 1 day 1", week, day, ok)
	}

	if _, _, ok := spec.Locate(race.AddDate(0, 0, 1)); ok {
		t.Error("date after the race should be outside the plan")
	}

	if got := spec.DateOf(18, 7); !got.Equal(time.Date(2026, time.April, 19, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("DateOf(18, 7) = %v, want race day", got)
	}

	if _, _, ok := (PlanSpec{Weeks: 4}).Locate(race); ok {
		t.Error("a plan without a goal date cannot locate dates")
	}
}

func TestWorkoutEasyMiles(t *testing.T) {
	w := Workout{
		Type:       WorkoutQuality,
		DistanceMi: 7,
		Segments: []Segment{
			{Label: "warm-up", DistanceMi: 1.5, Zone: PaceEasy},
			{Label: "cruise", Reps: 4, DistanceMi: 1, Zone: PaceThreshold},
			{Label: "cool-down", DistanceMi: 1.5, Zone: PaceEasy},
		},
	}
	if got := w.EasyMiles(); got != 3 {
		t.Errorf("EasyMiles() = %v, want 3", got)
	}
	if !w.IsQuality() {
		t.Error("quality workout should report IsQuality")
	}

	long := Workout{Type: WorkoutLong, Subtype: SubtypeMarathonPace}
	if !long.IsQuality() {
		t.Error("marathon-pace long run counts as a quality session")
	}
	if (Workout{Type: WorkoutLong}).IsQuality() {
		t.Error("plain long run is not a quality session")
	}
}
