// Package domain holds the plan engine's data model: closed enumerations,
// the immutable generation inputs and the Plan aggregate it emits.
package domain

import (
	"fmt"
	"strings"
)

// Distance is a supported goal race distance.
type Distance string

const (
	Distance5K       Distance = "5k"
	Distance10K      Distance = "10k"
	DistanceHalf     Distance = "half"
	DistanceMarathon Distance = "marathon"
)

// Distances lists every supported race distance, shortest first.
var Distances = []Distance{Distance5K, Distance10K, DistanceHalf, DistanceMarathon}

// Miles returns the race length in miles.
func (d Distance) Miles() float64 {
	switch d {
	case Distance5K:
		return 3.1
	case Distance10K:
		return 6.2
	case DistanceHalf:
		return 13.1
	case DistanceMarathon:
		return 26.2
	}
	return 0
}

// Valid reports whether d is one of the known distances.
func (d Distance) Valid() bool { return d.Miles() > 0 }

// IsShort is true for races where the build alternates threshold with
// interval work instead of marathon-pace work.
func (d Distance) IsShort() bool { return d == Distance5K || d == Distance10K }

// ParseDistance accepts the canonical names plus a few common aliases.
func ParseDistance(s string) (Distance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "5k", "5km":
		return Distance5K, nil
	case "10k", "10km":
		return Distance10K, nil
	case "half", "half_marathon", "half-marathon", "hm", "21k":
		return DistanceHalf, nil
	case "marathon", "full", "42k":
		return DistanceMarathon, nil
	}
	return "", fmt.Errorf("%w: unknown distance %q", ErrInvalidInput, s)
}

// Tier is an athlete's target weekly-volume bracket.
type Tier string

const (
	TierBuilder Tier = "builder"
	TierLow     Tier = "low"
	TierMid     Tier = "mid"
	TierHigh    Tier = "high"
)

// Tiers lists every volume tier, lowest first.
var Tiers = []Tier{TierBuilder, TierLow, TierMid, TierHigh}

func (t Tier) Valid() bool {
	switch t {
	case TierBuilder, TierLow, TierMid, TierHigh:
		return true
	}
	return false
}

func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown tier %q", ErrInvalidInput, s)
	}
	return t, nil
}

// PhaseType is the physiological emphasis of a contiguous block of weeks.
type PhaseType string

const (
	PhaseBase         PhaseType = "base"
	PhaseThreshold    PhaseType = "threshold"
	PhaseMarathonPace PhaseType = "marathon_pace"
	PhaseIntervals    PhaseType = "intervals"
	PhaseRecovery     PhaseType = "recovery"
	PhasePeak         PhaseType = "peak"
	PhaseTaper        PhaseType = "taper"
	PhaseRace         PhaseType = "race"
)

// PhaseTypes lists every phase type in plan order.
var PhaseTypes = []PhaseType{
	PhaseBase, PhaseThreshold, PhaseMarathonPace, PhaseIntervals,
	PhaseRecovery, PhasePeak, PhaseTaper, PhaseRace,
}

func (p PhaseType) Valid() bool {
	for _, v := range PhaseTypes {
		if v == p {
			return true
		}
	}
	return false
}

// IsBuild is true for the alternating loading blocks between base and peak.
func (p PhaseType) IsBuild() bool {
	return p == PhaseThreshold || p == PhaseMarathonPace || p == PhaseIntervals
}

// Theme is the single emphasis assigned to one week.
type Theme string

const (
	ThemeRebuildEasy       Theme = "rebuild_easy"
	ThemeRebuildStrides    Theme = "rebuild_strides"
	ThemeBase              Theme = "base"
	ThemeBuildThreshold    Theme = "build_threshold"
	ThemeBuildMarathonPace Theme = "build_marathon_pace"
	ThemeBuildIntervals    Theme = "build_intervals"
	ThemeRecovery          Theme = "recovery"
	ThemePeak              Theme = "peak"
	ThemeTaper1            Theme = "taper_1"
	ThemeTaper2            Theme = "taper_2"
	ThemeTuneUpRace        Theme = "tune_up_race"
	ThemeRace              Theme = "race"
)

// IsRebuild is true for the injury-return themes.
func (t Theme) IsRebuild() bool { return t == ThemeRebuildEasy || t == ThemeRebuildStrides }

// IsTaper is true for both taper themes.
func (t Theme) IsTaper() bool { return t == ThemeTaper1 || t == ThemeTaper2 }

// IntensityType classifies quality-workout templates.
type IntensityType string

const (
	IntensityStrides      IntensityType = "strides"
	IntensityHills        IntensityType = "hills"
	IntensityFartlek      IntensityType = "fartlek"
	IntensityThreshold    IntensityType = "threshold"
	IntensityIntervals    IntensityType = "intervals"
	IntensityMarathonPace IntensityType = "marathon_pace"
	IntensitySharpener    IntensityType = "sharpener"
)

var IntensityTypes = []IntensityType{
	IntensityStrides, IntensityHills, IntensityFartlek, IntensityThreshold,
	IntensityIntervals, IntensityMarathonPace, IntensitySharpener,
}

func (i IntensityType) Valid() bool {
	for _, v := range IntensityTypes {
		if v == i {
			return true
		}
	}
	return false
}

// WorkoutType is the kind of session scheduled on a day.
type WorkoutType string

const (
	WorkoutRest     WorkoutType = "rest"
	WorkoutEasy     WorkoutType = "easy"
	WorkoutRecovery WorkoutType = "recovery"
	WorkoutLong     WorkoutType = "long"
	WorkoutQuality  WorkoutType = "quality"
	WorkoutRace     WorkoutType = "race"
)

// Workout subtypes that carry meaning for validation and summaries.
const (
	SubtypeMarathonPace = "marathon_pace"
	SubtypeStrides      = "strides"
	SubtypeShakeout     = "shakeout"
	SubtypePlaceholder  = "placeholder"
	SubtypeTuneUp       = "tune_up"
	SubtypeGoalRace     = "goal_race"
)

// PaceZone names the effort a segment is run at.
type PaceZone string

const (
	PaceEasy       PaceZone = "easy"
	PaceRecovery   PaceZone = "recovery"
	PaceLong       PaceZone = "long"
	PaceSteady     PaceZone = "steady"
	PaceMarathon   PaceZone = "marathon"
	PaceThreshold  PaceZone = "threshold"
	PaceInterval   PaceZone = "interval"
	PaceRepetition PaceZone = "repetition"
	PaceRace       PaceZone = "race"
)

// IsEasy reports whether running in this zone counts toward easy mileage.
func (z PaceZone) IsEasy() bool {
	return z == PaceEasy || z == PaceRecovery || z == PaceLong
}

// Facility is a hard requirement a template may carry.
type Facility string

const (
	FacilityNone      Facility = ""
	FacilityTrack     Facility = "track"
	FacilityHills     Facility = "hills"
	FacilityTreadmill Facility = "treadmill"
)

// Valid is true for the facilities a template can require. FacilityNone is
// not one of them.
func (f Facility) Valid() bool {
	return f == FacilityTrack || f == FacilityHills || f == FacilityTreadmill
}

// TuneUpPurpose drives the effort note on a tune-up race week.
type TuneUpPurpose string

const (
	TuneUpThreshold  TuneUpPurpose = "threshold"
	TuneUpSharpening TuneUpPurpose = "sharpening"
)

func (p TuneUpPurpose) Valid() bool {
	return p == TuneUpThreshold || p == TuneUpSharpening
}
