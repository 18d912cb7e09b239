// Package scaler turns an abstract day slot into a concrete prescription and
// clamps it to the physiological caps that hold regardless of template.
package scaler

import (
	"fmt"
	"math"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
	"github.com/Nmdk1/StrideIQ-sub003/internal/templates"
)

// MaxMarathonPaceMiles caps any continuous marathon-pace segment.
const MaxMarathonPaceMiles = 8.0

const (
	thresholdShare = 0.10
	intervalShare  = 0.08
	qualityShare   = 0.12

	warmupShare = 0.05
	minWarmup   = 1.0
	maxWarmup   = 2.0

	shakeoutMiles = 3.0
	stridesReps   = 6
)

var longRunCap = map[domain.Tier]float64{
	domain.TierBuilder: 16,
	domain.TierLow:     18,
	domain.TierMid:     20,
	domain.TierHigh:    22,
}

var longRunShare = map[domain.Distance]float64{
	domain.Distance5K:       0.22,
	domain.Distance10K:      0.25,
	domain.DistanceHalf:     0.28,
	domain.DistanceMarathon: 0.32,
}

// mpProgression is the long-run marathon-pace segment by position in phase.
var mpProgression = []float64{4, 6, 8}

// Input describes one slot to scale.
type Input struct {
	Type        domain.WorkoutType
	Subtype     string
	WeeklyMiles float64
	Tier        domain.Tier
	Phase       domain.PhaseType
	WeekInPhase int
	PhaseWeeks  int
	Distance    domain.Distance
	Paces       Paces

	// Miles requests a distance for easy, recovery and long slots. Long runs
	// default to their share of the week when zero.
	Miles float64

	// MainSetMiles is the week volume quality main sets are capped against.
	// WeeklyMiles is used when zero.
	MainSetMiles float64

	// Template and Step are set for selected quality slots. A quality slot
	// without a template is scaled as a placeholder.
	Template *domain.WorkoutTemplate
	Step     domain.ProgressionStep

	// RaceDistance is the distance of a tune-up race.
	RaceDistance domain.Distance
}

// Prescription is the concrete session for a slot.
type Prescription struct {
	Type        domain.WorkoutType
	Subtype     string
	DistanceMi  float64
	DurationMin float64
	PaceZone    domain.PaceZone
	Pace        string
	Segments    []domain.Segment
	// Clamps lists every cap that changed the prescription.
	Clamps []string
}

// Fill copies the prescription onto w.
func (p Prescription) Fill(w *domain.Workout) {
	w.Type = p.Type
	w.Subtype = p.Subtype
	w.DistanceMi = p.DistanceMi
	w.DurationMin = p.DurationMin
	w.PaceZone = p.PaceZone
	w.Pace = p.Pace
	w.Segments = p.Segments
}

// LongRunCap is the absolute long-run ceiling for tier.
func LongRunCap(t domain.Tier) float64 { return longRunCap[t] }

// LongRunShare is the largest share of the week a long run may take.
func LongRunShare(d domain.Distance) float64 { return longRunShare[d] }

// MainSetShare is the largest share of the week the main set of a template
// of type it may take.
func MainSetShare(it domain.IntensityType) float64 {
	switch it {
	case domain.IntensityThreshold:
		return thresholdShare
	case domain.IntensityIntervals:
		return intervalShare
	}
	return qualityShare
}

func (in Input) mainSetBase() float64 {
	if in.MainSetMiles > 0 {
		return in.MainSetMiles
	}
	return in.WeeklyMiles
}

// Scale converts a slot into a prescription.
func Scale(in Input) (Prescription, error) {
	if in.Type == domain.WorkoutRest {
		return Prescription{Type: domain.WorkoutRest}, nil
	}
	if in.WeeklyMiles <= 0 {
		return Prescription{}, fmt.Errorf("%w: weekly volume must be positive, got %.1f", domain.ErrInvalidInput, in.WeeklyMiles)
	}
	if _, ok := longRunCap[in.Tier]; !ok {
		return Prescription{}, fmt.Errorf("%w: unknown tier %q", domain.ErrInvalidInput, in.Tier)
	}

	switch in.Type {
	case domain.WorkoutEasy, domain.WorkoutRecovery:
		return scaleEasy(in), nil
	case domain.WorkoutLong:
		return scaleLong(in), nil
	case domain.WorkoutQuality:
		if in.Template == nil {
			return scalePlaceholder(in), nil
		}
		return scaleQuality(in), nil
	case domain.WorkoutRace:
		return scaleRace(in)
	}
	return Prescription{}, fmt.Errorf("%w: unknown workout type %q", domain.ErrInvalidInput, in.Type)
}

func scaleEasy(in Input) Prescription {
	zone := domain.PaceEasy
	if in.Type == domain.WorkoutRecovery {
		zone = domain.PaceRecovery
	}
	miles := in.Miles
	if in.Subtype == domain.SubtypeShakeout && miles <= 0 {
		miles = math.Min(shakeoutMiles, 0.2*in.WeeklyMiles)
	}
	miles = round1(miles)

	p := Prescription{
		Type:        in.Type,
		Subtype:     in.Subtype,
		DistanceMi:  miles,
		DurationMin: round1(in.Paces.Minutes(zone, miles)),
		PaceZone:    zone,
		Pace:        in.Paces.Format(zone),
	}
	if in.Subtype == domain.SubtypeStrides || in.Subtype == domain.SubtypeShakeout {
		reps := stridesReps
		if in.Subtype == domain.SubtypeShakeout {
			reps = 4
		}
		p.Segments = []domain.Segment{
			{Label: "easy", DistanceMi: miles, Zone: zone, Pace: p.Pace},
			{Label: "strides", Reps: reps, DurationMin: 0.33, Zone: domain.PaceRepetition, Pace: in.Paces.Format(domain.PaceRepetition), RecoveryMin: 1},
		}
		p.DurationMin = round1(p.DurationMin + float64(reps)*1.33)
	}
	return p
}

func scaleLong(in Input) Prescription {
	p := Prescription{Type: domain.WorkoutLong, PaceZone: domain.PaceLong, Pace: in.Paces.Format(domain.PaceLong)}

	share := longRunShare[in.Distance]
	if share == 0 {
		share = longRunShare[domain.DistanceMarathon]
	}
	ceiling := math.Min(longRunCap[in.Tier], share*in.WeeklyMiles)
	miles := in.Miles
	if miles <= 0 {
		miles = share * in.WeeklyMiles
	}
	if miles > ceiling {
		p.Clamps = append(p.Clamps, fmt.Sprintf("long run %.1f mi clamped to %.1f mi", miles, ceiling))
		miles = ceiling
	}
	miles = math.Floor(miles*10) / 10
	p.DistanceMi = miles

	mp := 0.0
	if in.Subtype == domain.SubtypeMarathonPace {
		switch {
		case in.Phase == domain.PhaseBase:
			p.Clamps = append(p.Clamps, "marathon-pace segment removed in base phase")
		case in.Distance.IsShort():
			p.Clamps = append(p.Clamps, fmt.Sprintf("marathon-pace segment removed for %s", in.Distance))
		default:
			mp = mpProgression[templates.StepIndex(in.WeekInPhase, in.PhaseWeeks, len(mpProgression))]
			if mp > MaxMarathonPaceMiles {
				p.Clamps = append(p.Clamps, fmt.Sprintf("marathon-pace segment %.1f mi clamped to %.1f mi", mp, MaxMarathonPaceMiles))
				mp = MaxMarathonPaceMiles
			}
			// Keep at least half the run easy.
			if limit := math.Floor(miles / 2); mp > limit {
				mp = limit
			}
			if mp < 2 {
				p.Clamps = append(p.Clamps, "long run too short for a marathon-pace segment")
				mp = 0
			}
		}
	}

	if mp == 0 {
		p.DurationMin = round1(in.Paces.Minutes(domain.PaceLong, miles))
		return p
	}

	easy := round1(miles - mp)
	p.Subtype = domain.SubtypeMarathonPace
	p.Segments = []domain.Segment{
		{Label: "easy", DistanceMi: easy, Zone: domain.PaceLong, Pace: in.Paces.Format(domain.PaceLong)},
		{Label: "marathon pace", DistanceMi: mp, Zone: domain.PaceMarathon, Pace: in.Paces.Format(domain.PaceMarathon)},
	}
	p.DurationMin = round1(in.Paces.Minutes(domain.PaceLong, easy) + in.Paces.Minutes(domain.PaceMarathon, mp))
	return p
}

// Warmup is the warm-up and cool-down distance for a week of weekly miles.
func Warmup(weekly float64) float64 {
	return round1(math.Max(minWarmup, math.Min(maxWarmup, warmupShare*weekly)))
}

func scaleQuality(in Input) Prescription {
	t := in.Template
	step := in.Step
	zone := step.Zone
	if zone == "" {
		zone = domain.PaceThreshold
	}

	p := Prescription{
		Type:     domain.WorkoutQuality,
		Subtype:  string(t.Type),
		PaceZone: zone,
		Pace:     in.Paces.Format(zone),
	}

	reps := step.Reps
	if reps < 1 {
		reps = 1
	}
	timed := step.RepMiles <= 0 && step.RepMinutes > 0
	rep := step.RepMiles
	if timed {
		rep = in.Paces.Miles(zone, step.RepMinutes)
	}
	if t.Type == domain.IntensityMarathonPace && rep > MaxMarathonPaceMiles {
		p.Clamps = append(p.Clamps, fmt.Sprintf("marathon-pace rep %.1f mi clamped to %.1f mi", rep, MaxMarathonPaceMiles))
		rep = MaxMarathonPaceMiles
		timed = false
	}

	ceiling := MainSetShare(t.Type) * in.mainSetBase()
	if main := float64(reps) * rep; main > ceiling {
		fit := int(math.Floor(ceiling / rep))
		if fit >= 1 {
			reps = fit
		} else {
			reps = 1
			rep = floor2(ceiling)
			timed = false
		}
		p.Clamps = append(p.Clamps, fmt.Sprintf("main set %.1f mi clamped to %.1f mi (%.0f%% of week)",
			main, float64(reps)*rep, MainSetShare(t.Type)*100))
	}

	wu := Warmup(in.WeeklyMiles)
	repMinutes := in.Paces.Minutes(zone, rep)
	main := domain.Segment{
		Label:       t.Name,
		Reps:        reps,
		DistanceMi:  floor2(rep),
		Zone:        zone,
		Pace:        p.Pace,
		RecoveryMin: step.RecoveryMin,
	}
	if timed {
		main.DurationMin = step.RepMinutes
		repMinutes = step.RepMinutes
	}

	easyPace := in.Paces.Format(domain.PaceEasy)
	p.Segments = []domain.Segment{
		{Label: "warm-up", DistanceMi: wu, Zone: domain.PaceEasy, Pace: easyPace},
		main,
		{Label: "cool-down", DistanceMi: wu, Zone: domain.PaceEasy, Pace: easyPace},
	}
	p.DistanceMi = round1(2*wu + main.Miles())
	p.DurationMin = round1(2*in.Paces.Minutes(domain.PaceEasy, wu) +
		float64(reps)*repMinutes + float64(reps-1)*step.RecoveryMin)
	return p
}

// scalePlaceholder is a generic steady run used when no template fits.
func scalePlaceholder(in Input) Prescription {
	wu := Warmup(in.WeeklyMiles)
	steady := floor2(math.Min(3, intervalShare*in.mainSetBase()))
	easyPace := in.Paces.Format(domain.PaceEasy)
	return Prescription{
		Type:       domain.WorkoutQuality,
		Subtype:    domain.SubtypePlaceholder,
		DistanceMi: round1(2*wu + steady),
		DurationMin: round1(2*in.Paces.Minutes(domain.PaceEasy, wu) +
			in.Paces.Minutes(domain.PaceSteady, steady)),
		PaceZone: domain.PaceSteady,
		Pace:     in.Paces.Format(domain.PaceSteady),
		Segments: []domain.Segment{
			{Label: "warm-up", DistanceMi: wu, Zone: domain.PaceEasy, Pace: easyPace},
			{Label: "steady", DistanceMi: steady, Zone: domain.PaceSteady, Pace: in.Paces.Format(domain.PaceSteady)},
			{Label: "cool-down", DistanceMi: wu, Zone: domain.PaceEasy, Pace: easyPace},
		},
	}
}

func scaleRace(in Input) (Prescription, error) {
	if in.Subtype == domain.SubtypeTuneUp {
		d := in.RaceDistance
		if !d.Valid() {
			return Prescription{}, fmt.Errorf("%w: tune-up without a valid distance", domain.ErrInvalidInput)
		}
		pace := FormatPace(in.Paces.at(d.Miles()))
		easyPace := in.Paces.Format(domain.PaceEasy)
		race := d.Miles()
		return Prescription{
			Type:       domain.WorkoutRace,
			Subtype:    domain.SubtypeTuneUp,
			DistanceMi: round1(race + 2*minWarmup),
			DurationMin: round1(2*in.Paces.Minutes(domain.PaceEasy, minWarmup) +
				race*in.Paces.at(race)/60),
			PaceZone: domain.PaceRace,
			Pace:     pace,
			Segments: []domain.Segment{
				{Label: "warm-up", DistanceMi: minWarmup, Zone: domain.PaceEasy, Pace: easyPace},
				{Label: fmt.Sprintf("%s tune-up", d), DistanceMi: race, Zone: domain.PaceRace, Pace: pace},
				{Label: "cool-down", DistanceMi: minWarmup, Zone: domain.PaceEasy, Pace: easyPace},
			},
		}, nil
	}

	race := in.Distance.Miles()
	if race == 0 {
		return Prescription{}, fmt.Errorf("%w: unknown distance %q", domain.ErrInvalidInput, in.Distance)
	}
	return Prescription{
		Type:        domain.WorkoutRace,
		Subtype:     domain.SubtypeGoalRace,
		DistanceMi:  race,
		DurationMin: round1(in.Paces.Minutes(domain.PaceRace, race)),
		PaceZone:    domain.PaceRace,
		Pace:        in.Paces.Format(domain.PaceRace),
	}, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func floor2(v float64) float64 { return math.Floor(v*100) / 100 }
