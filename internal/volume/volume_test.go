package volume

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
)

func TestPeakAndInitialVolume(t *testing.T) {
	peak, err := PeakVolume(domain.DistanceMarathon, domain.TierBuilder)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, peak, 45.0)

	initial, err := InitialVolume(domain.DistanceMarathon, domain.TierBuilder)
	require.NoError(t, err)
	assert.LessOrEqual(t, initial, 35.0)

	for _, d := range domain.Distances {
		for _, tier := range domain.Tiers {
			p, err := PeakVolume(d, tier)
			require.NoError(t, err)
			i, err := InitialVolume(d, tier)
			require.NoError(t, err)
			assert.Less(t, i, p, "%s/%s initial should sit below peak", d, tier)
		}
	}

	_, err = PeakVolume("ultra", domain.TierMid)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = InitialVolume(domain.Distance5K, "elite")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestTaperWeeks(t *testing.T) {
	tests := []struct {
		d    domain.Distance
		tau1 float64
		want int
	}{
		{domain.Distance5K, 0, 1},
		{domain.Distance10K, 38, 1},
		{domain.DistanceHalf, 0, 2},
		{domain.DistanceMarathon, 0, 2},
		{domain.DistanceMarathon, 25, 1},
		{domain.DistanceMarathon, 50, 3},
		{domain.Distance5K, 20, 1},
		{domain.Distance10K, 60, 2},
	}
	for _, tt := range tests {
		if got := TaperWeeks(tt.d, tt.tau1); got != tt.want {
			t.Errorf("TaperWeeks(%s, %v) = %d, want %d", tt.d, tt.tau1, got, tt.want)
		}
	}
}

func TestRecoveryFrequency(t *testing.T) {
	assert.Equal(t, 4, RecoveryFrequency(25))
	assert.Equal(t, 3, RecoveryFrequency(50))
	assert.Equal(t, 3, RecoveryFrequency(38))
	assert.Equal(t, 3, RecoveryFrequency(0))
}

func TestBuildPhasesPartition(t *testing.T) {
	for _, d := range domain.Distances {
		for weeks := 1; weeks <= 24; weeks++ {
			for _, tau := range []float64{0, 25, 50} {
				name := fmt.Sprintf("%s/%dwk/tau%.0f", d, weeks, tau)
				phases, err := BuildPhases(d, weeks, domain.TierMid, Options{Tau1Days: tau})
				require.NoError(t, err, name)
				require.NoError(t, CheckPartition(phases, weeks), name)
				assert.Len(t, Fractions(phases), weeks, name)
			}
		}
	}
}

func TestBuildPhasesInvalid(t *testing.T) {
	_, err := BuildPhases(domain.DistanceMarathon, 0, domain.TierMid, Options{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = BuildPhases("ultra", 12, domain.TierMid, Options{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestBuildPhasesMarathon18(t *testing.T) {
	phases, err := BuildPhases(domain.DistanceMarathon, 18, domain.TierMid, Options{})
	require.NoError(t, err)

	var types []domain.PhaseType
	for _, p := range phases {
		types = append(types, p.Type)
	}
	assert.Equal(t, []domain.PhaseType{
		domain.PhaseBase,
		domain.PhaseThreshold, domain.PhaseRecovery,
		domain.PhaseMarathonPace, domain.PhaseRecovery,
		domain.PhaseThreshold,
		domain.PhasePeak, domain.PhaseTaper, domain.PhaseRace,
	}, types)

	peak, ok := domain.PhaseFor(phases, 15)
	require.True(t, ok)
	assert.Equal(t, domain.PhasePeak, peak.Type)
	assert.Equal(t, 1, peak.Weeks())
}

func TestBuildPhasesRecoveryEveryFewWeeks(t *testing.T) {
	for _, d := range domain.Distances {
		for _, tau := range []float64{0, 20, 35, 50} {
			for weeks := 4; weeks <= 24; weeks++ {
				name := fmt.Sprintf("%s/%dwk/tau%.0f", d, weeks, tau)
				phases, err := BuildPhases(d, weeks, domain.TierMid, Options{Tau1Days: tau})
				require.NoError(t, err, name)

				freq := RecoveryFrequency(tau)
				run, recoveries := 0, 0
				for i, p := range phases {
					switch p.Type {
					case domain.PhaseThreshold, domain.PhaseMarathonPace, domain.PhaseIntervals:
						run += p.Weeks()
						assert.LessOrEqual(t, run, freq, "%s: %d loading weeks without recovery", name, run)
					case domain.PhaseRecovery:
						recoveries++
						run = 0
					case domain.PhasePeak:
						assert.NotEqual(t, domain.PhaseRecovery, phases[i-1].Type, "%s: peak straight after recovery", name)
					}
				}
				if weeks == 18 {
					assert.GreaterOrEqual(t, recoveries, 2, name)
				}
			}
		}
	}
}

func TestBuildBlocks(t *testing.T) {
	T, M, R := domain.PhaseThreshold, domain.PhaseMarathonPace, domain.PhaseRecovery
	tests := []struct {
		n, freq int
		want    []domain.PhaseType
	}{
		{0, 3, []domain.PhaseType{}},
		{3, 3, []domain.PhaseType{T, T, T}},
		{8, 3, []domain.PhaseType{T, T, T, R, M, M, R, T}},
		{9, 3, []domain.PhaseType{T, T, T, R, M, M, M, R, T}},
		{10, 3, []domain.PhaseType{T, T, T, R, M, M, M, R, T, T}},
		{11, 4, []domain.PhaseType{T, T, T, T, R, M, M, M, M, R, T}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, buildBlocks(tt.n, tt.freq, M), "n=%d freq=%d", tt.n, tt.freq)
	}
}

func TestBuildPhasesShortDistanceUsesIntervals(t *testing.T) {
	phases, err := BuildPhases(domain.Distance10K, 16, domain.TierMid, Options{})
	require.NoError(t, err)
	for _, p := range phases {
		assert.NotEqual(t, domain.PhaseMarathonPace, p.Type)
	}
	_, hasIntervals := findPhase(phases, domain.PhaseIntervals)
	assert.True(t, hasIntervals)
}

func TestBuildPhases10kEightWeeks(t *testing.T) {
	phases, err := BuildPhases(domain.Distance10K, 8, domain.TierMid, Options{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(phases), 3)
	_, hasTaper := findPhase(phases, domain.PhaseTaper)
	assert.True(t, hasTaper)
}

func TestBuildPhasesShortPrep(t *testing.T) {
	tests := []struct {
		weeks int
		want  []domain.PhaseType
	}{
		{1, []domain.PhaseType{domain.PhaseRace}},
		{2, []domain.PhaseType{domain.PhaseTaper, domain.PhaseRace}},
		{3, []domain.PhaseType{domain.PhaseBase, domain.PhaseTaper, domain.PhaseRace}},
	}
	for _, tt := range tests {
		phases, err := BuildPhases(domain.DistanceHalf, tt.weeks, domain.TierLow, Options{})
		require.NoError(t, err)
		var got []domain.PhaseType
		for _, p := range phases {
			got = append(got, p.Type)
		}
		assert.Equal(t, tt.want, got, "%d weeks", tt.weeks)
	}
}

func TestFractionsRampLimits(t *testing.T) {
	for _, d := range domain.Distances {
		for _, tier := range domain.Tiers {
			for weeks := 4; weeks <= 24; weeks++ {
				phases, err := BuildPhases(d, weeks, tier, Options{})
				require.NoError(t, err)
				v := Fractions(phases)
				for i := 1; i < len(v); i++ {
					if v[i] <= v[i-1] {
						continue
					}
					rise := (v[i] - v[i-1]) / v[i-1]
					assert.LessOrEqual(t, rise, MaxIncrease(i),
						"%s/%s/%dwk week %d -> %d rises %.3f", d, tier, weeks, i, i+1, rise)
				}
			}
		}
	}
}

func TestFractionsCutbacksAndTaper(t *testing.T) {
	phases, err := BuildPhases(domain.DistanceMarathon, 18, domain.TierMid, Options{})
	require.NoError(t, err)
	v := Fractions(phases)

	peak := 0.0
	for _, f := range v {
		if f > peak {
			peak = f
		}
	}
	assert.Equal(t, 1.0, peak)

	cutbacks := 0
	for i := 1; i < len(v); i++ {
		p, _ := domain.PhaseFor(phases, i+1)
		if p.Type == domain.PhaseTaper || p.Type == domain.PhaseRace {
			continue
		}
		if v[i] < 0.85*v[i-1] {
			cutbacks++
		}
	}
	assert.GreaterOrEqual(t, cutbacks, 2)

	n := len(v)
	assert.Less(t, v[n-1], 0.6*peak)
	assert.Less(t, v[n-2], 0.8*peak)
}

func TestCurrentVolumeRatioLowersStart(t *testing.T) {
	normal, err := BuildPhases(domain.DistanceMarathon, 18, domain.TierMid, Options{})
	require.NoError(t, err)
	low, err := BuildPhases(domain.DistanceMarathon, 18, domain.TierMid, Options{CurrentVolumeRatio: 0.1})
	require.NoError(t, err)

	assert.Less(t, Fractions(low)[0], Fractions(normal)[0])
	assert.Equal(t, minStart, Fractions(low)[0])
}

func TestClampRamp(t *testing.T) {
	in := []float64{0.5, 0.9, 0.6, 0.95}
	out := ClampRamp(in)
	assert.Equal(t, []float64{0.5, 0.9, 0.6, 0.95}, in, "input must not be modified")
	assert.InDelta(t, 0.57, out[1], 0.0001)
	assert.Equal(t, 0.6, out[2])
	assert.InDelta(t, 0.684, out[3], 0.0001)
}

func findPhase(phases []domain.Phase, t domain.PhaseType) (domain.Phase, bool) {
	for _, p := range phases {
		if p.Type == t {
			return p, true
		}
	}
	return domain.Phase{}, false
}
