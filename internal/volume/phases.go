package volume

import (
	"fmt"
	"math"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
)

const (
	loadGrowth   = 0.08
	baseGrowth   = 0.04
	earlyGrowth  = 0.12
	recoveryDrop = 0.83
	taperStep    = 0.92

	// Design-time rise limits, kept under MaxIncrease so rounding to a
	// tenth of a mile can never push a week over the hard limit.
	earlyRiseCap = 0.14
	riseCap      = 0.095

	raceFraction = 0.40
	minStart     = 0.25
)

// taperFractions counts back from the last taper week.
var taperFractions = []float64{0.58, 0.75, 0.85}

// Options carries the athlete inputs the planner reacts to.
type Options struct {
	Tau1Days           float64
	CurrentVolumeRatio float64
}

// BuildPhases partitions weeks 1..weeks into phases and assigns every week a
// fraction of peak volume.
func BuildPhases(d domain.Distance, weeks int, tier domain.Tier, opts Options) ([]domain.Phase, error) {
	if weeks <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %d weeks", domain.ErrInvalidInput, weeks)
	}
	peak, err := PeakVolume(d, tier)
	if err != nil {
		return nil, err
	}
	initial, err := InitialVolume(d, tier)
	if err != nil {
		return nil, err
	}

	start := initial / peak
	if r := opts.CurrentVolumeRatio; r > 0 && r < start {
		start = math.Max(r, minStart)
	}

	types := weekTypes(d, weeks, opts.Tau1Days)
	fractions := ClampRamp(weekFractions(types, start))
	return group(types, fractions), nil
}

// weekTypes lays out one phase type per week.
func weekTypes(d domain.Distance, weeks int, tau1 float64) []domain.PhaseType {
	switch weeks {
	case 1:
		return []domain.PhaseType{domain.PhaseRace}
	case 2:
		return []domain.PhaseType{domain.PhaseTaper, domain.PhaseRace}
	case 3:
		return []domain.PhaseType{domain.PhaseBase, domain.PhaseTaper, domain.PhaseRace}
	}

	taper := TaperWeeks(d, tau1)
	if taper > weeks-3 {
		taper = weeks - 3
	}
	preBuild := weeks - 2 - taper
	base := clamp(int(math.Round(0.3*float64(preBuild))), 1, 4)
	if base > preBuild {
		base = preBuild
	}

	raceSpecific := domain.PhaseMarathonPace
	if d.IsShort() {
		raceSpecific = domain.PhaseIntervals
	}

	types := make([]domain.PhaseType, 0, weeks)
	for i := 0; i < base; i++ {
		types = append(types, domain.PhaseBase)
	}
	types = append(types, buildBlocks(preBuild-base, RecoveryFrequency(tau1), raceSpecific)...)
	types = append(types, domain.PhasePeak)
	for i := 0; i < taper; i++ {
		types = append(types, domain.PhaseTaper)
	}
	return append(types, domain.PhaseRace)
}

// buildBlocks alternates threshold and race-specific blocks of at most freq
// loading weeks, each followed by a recovery week. At least one loading week
// always sits between the last recovery and the peak.
func buildBlocks(n, freq int, raceSpecific domain.PhaseType) []domain.PhaseType {
	recoveries := n / (freq + 1)
	sizes := make([]int, recoveries, recoveries+1)
	for i := range sizes {
		sizes[i] = freq
	}
	tail := n - recoveries*(freq+1)
	if tail == 0 && recoveries > 0 {
		sizes[recoveries-1]--
		tail = 1
	}
	sizes = append(sizes, tail)

	types := make([]domain.PhaseType, 0, n)
	for block, size := range sizes {
		t := domain.PhaseThreshold
		if block%2 == 1 {
			t = raceSpecific
		}
		for i := 0; i < size; i++ {
			types = append(types, t)
		}
		if block < recoveries {
			types = append(types, domain.PhaseRecovery)
		}
	}
	return types
}

// weekFractions anchors the build backward from a peak of 1.0 and grows it
// forward from the starting fraction, whichever is lower. Recovery weeks
// always drop from the week before. Taper and race weeks step down.
func weekFractions(types []domain.PhaseType, start float64) []float64 {
	n := len(types)
	out := make([]float64, n)

	peakIdx := -1
	for i, t := range types {
		if t == domain.PhasePeak {
			peakIdx = i
		}
	}

	if peakIdx >= 0 {
		back := make([]float64, peakIdx+1)
		back[peakIdx] = 1.0
		for i := peakIdx - 1; i >= 0; i-- {
			next := back[i+1]
			switch {
			case types[i+1] == domain.PhaseRecovery:
				back[i] = next / recoveryDrop
			case types[i+1] == domain.PhaseBase:
				back[i] = next / (1 + baseGrowth)
			default:
				back[i] = next / (1 + loadGrowth)
			}
			back[i] = math.Min(back[i], 1.0)
		}

		for i := 0; i <= peakIdx; i++ {
			if i == 0 {
				out[i] = math.Min(back[i], start)
				continue
			}
			g := 1 + loadGrowth
			switch {
			case types[i] == domain.PhaseRecovery:
				g = recoveryDrop
			case i <= 3:
				g = 1 + earlyGrowth
			}
			out[i] = math.Min(back[i], out[i-1]*g)
		}
		// A short rebound after the last recovery can leave the peak below
		// an earlier week.
		for i := 0; i < peakIdx; i++ {
			out[i] = math.Min(out[i], out[peakIdx])
		}
	}

	// Base week of a three-week plan.
	for i := 0; i < n && peakIdx < 0; i++ {
		if types[i] == domain.PhaseBase {
			out[i] = start
		}
	}

	out = Taper(types, out, start)

	for i := range out {
		out[i] = round4(out[i])
	}
	return out
}

// Taper steps taper and race weeks down from the highest loading week
// before them. ref stands in for that week when the plan has none.
func Taper(types []domain.PhaseType, fractions []float64, ref float64) []float64 {
	out := make([]float64, len(fractions))
	copy(out, fractions)

	tapers := 0
	top := 0.0
	for i, t := range types {
		switch t {
		case domain.PhaseTaper:
			tapers++
		case domain.PhaseRace:
		default:
			top = math.Max(top, out[i])
		}
	}
	if top > 0 {
		ref = top
	}

	seen := 0
	for i, t := range types {
		var target float64
		switch t {
		case domain.PhaseTaper:
			fromEnd := tapers - 1 - seen
			seen++
			target = taperFractions[clamp(fromEnd, 0, len(taperFractions)-1)]
		case domain.PhaseRace:
			target = raceFraction
		default:
			continue
		}
		target *= ref
		if i > 0 {
			target = math.Min(target, out[i-1]*taperStep)
		}
		out[i] = round4(target)
	}
	return out
}

// ClampRamp returns a copy of fractions with every week-over-week increase
// limited to the design rise caps. Decreases are left alone.
func ClampRamp(fractions []float64) []float64 {
	out := make([]float64, len(fractions))
	copy(out, fractions)
	for i := 1; i < len(out); i++ {
		limit := riseCap
		if i <= 3 {
			limit = earlyRiseCap
		}
		if maxV := out[i-1] * (1 + limit); out[i] > maxV {
			out[i] = math.Floor(maxV*10000) / 10000
		}
	}
	return out
}

// group merges consecutive weeks of the same type into phases. Recovery
// weeks always stand alone.
func group(types []domain.PhaseType, fractions []float64) []domain.Phase {
	var phases []domain.Phase
	for i, t := range types {
		week := i + 1
		if n := len(phases); n > 0 && phases[n-1].Type == t && t != domain.PhaseRecovery {
			phases[n-1].EndWeek = week
			phases[n-1].VolumeFractions = append(phases[n-1].VolumeFractions, fractions[i])
			continue
		}
		phases = append(phases, domain.Phase{
			Type:            t,
			StartWeek:       week,
			EndWeek:         week,
			VolumeFractions: []float64{fractions[i]},
		})
	}
	return phases
}

// Fractions flattens per-phase volume fractions into one slice indexed by
// week-1.
func Fractions(phases []domain.Phase) []float64 {
	var out []float64
	for _, p := range phases {
		out = append(out, p.VolumeFractions...)
	}
	return out
}

// CheckPartition verifies phases cover 1..weeks exactly once, in order.
func CheckPartition(phases []domain.Phase, weeks int) error {
	next := 1
	for _, p := range phases {
		if p.StartWeek != next || p.EndWeek < p.StartWeek {
			return fmt.Errorf("%w: phase %s spans %d-%d, expected start %d",
				domain.ErrInvariantViolation, p.Type, p.StartWeek, p.EndWeek, next)
		}
		if len(p.VolumeFractions) != p.Weeks() {
			return fmt.Errorf("%w: phase %s has %d fractions for %d weeks",
				domain.ErrInvariantViolation, p.Type, len(p.VolumeFractions), p.Weeks())
		}
		next = p.EndWeek + 1
	}
	if next != weeks+1 {
		return fmt.Errorf("%w: phases end at week %d, plan has %d", domain.ErrInvariantViolation, next-1, weeks)
	}
	n := len(phases)
	if phases[n-1].Type != domain.PhaseRace {
		return fmt.Errorf("%w: last phase is %s, want race", domain.ErrInvariantViolation, phases[n-1].Type)
	}
	if n >= 2 && phases[n-2].Type != domain.PhaseTaper {
		return fmt.Errorf("%w: second-to-last phase is %s, want taper", domain.ErrInvariantViolation, phases[n-2].Type)
	}
	if weeks >= 3 && phases[0].Type != domain.PhaseBase {
		return fmt.Errorf("%w: first phase is %s, want base", domain.ErrInvariantViolation, phases[0].Type)
	}
	return nil
}
