package themes

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
	"github.com/Nmdk1/StrideIQ-sub003/internal/volume"
)

var raceDay = time.Date(2026, time.April, 19, 0, 0, 0, 0, time.UTC)

func input(t *testing.T, d domain.Distance, weeks int, athlete domain.AthleteConstraints) Input {
	t.Helper()
	phases, err := volume.BuildPhases(d, weeks, domain.TierMid, volume.Options{Tau1Days: athlete.Tau1Days})
	require.NoError(t, err)
	return Input{
		Phases:  phases,
		Athlete: athlete,
		Spec:    domain.PlanSpec{Distance: d, GoalDate: raceDay, Weeks: weeks, DaysPerWeek: 6, Tier: domain.TierMid},
	}
}

func TestGenerateOneThemePerWeek(t *testing.T) {
	res, err := Generate(input(t, domain.DistanceMarathon, 18, domain.AthleteConstraints{}))
	require.NoError(t, err)
	require.Len(t, res.Themes, 18)
	for i, th := range res.Themes {
		assert.Equal(t, i+1, th.Week)
	}

	want := map[int]domain.Theme{
		1:  domain.ThemeBase,
		5:  domain.ThemeBuildThreshold,
		8:  domain.ThemeRecovery,
		9:  domain.ThemeBuildMarathonPace,
		15: domain.ThemePeak,
		16: domain.ThemeTaper1,
		17: domain.ThemeTaper2,
		18: domain.ThemeRace,
	}
	for week, theme := range want {
		assert.Equal(t, theme, res.Themes[week-1].Theme, "week %d", week)
	}
	assert.Empty(t, res.Skipped)
}

func TestGenerateShortRaceUsesIntervals(t *testing.T) {
	res, err := Generate(input(t, domain.Distance5K, 12, domain.AthleteConstraints{}))
	require.NoError(t, err)
	var seen bool
	for _, th := range res.Themes {
		assert.NotEqual(t, domain.ThemeBuildMarathonPace, th.Theme)
		if th.Theme == domain.ThemeBuildIntervals {
			seen = true
		}
	}
	assert.True(t, seen)
	assert.Equal(t, domain.ThemeTaper2, res.Themes[10].Theme)
}

func TestGenerateInjuryReturn(t *testing.T) {
	athlete := domain.AthleteConstraints{InjuryReturn: true, CurrentVolumeRatio: 0.25}
	res, err := Generate(input(t, domain.DistanceMarathon, 18, athlete))
	require.NoError(t, err)

	first := res.Themes[0]
	assert.Equal(t, domain.ThemeRebuildEasy, first.Theme)
	assert.LessOrEqual(t, first.VolumeFraction, 0.40)
	assert.Equal(t, domain.ThemeRebuildStrides, res.Themes[1].Theme)
	assert.LessOrEqual(t, res.Themes[1].VolumeFraction, 0.55)
	assert.Equal(t, domain.ThemeRebuildStrides, res.Themes[2].Theme)
	assert.LessOrEqual(t, res.Themes[2].VolumeFraction, 0.70)
	assert.Equal(t, domain.ThemeBase, res.Themes[3].Theme)

	for i := 1; i < len(res.Themes); i++ {
		prev, cur := res.Themes[i-1].VolumeFraction, res.Themes[i].VolumeFraction
		if cur > prev {
			assert.LessOrEqual(t, (cur-prev)/prev, volume.MaxIncrease(i), "week %d", i+1)
		}
	}
}

func TestGenerateShortLayoffShortensRebuild(t *testing.T) {
	athlete := domain.AthleteConstraints{InjuryReturn: true, CurrentVolumeRatio: 0.25, WeeksSincePeak: 3}
	res, err := Generate(input(t, domain.DistanceMarathon, 18, athlete))
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeRebuildEasy, res.Themes[0].Theme)
	assert.Equal(t, domain.ThemeRebuildStrides, res.Themes[1].Theme)
	assert.Equal(t, domain.ThemeBase, res.Themes[2].Theme)

	athlete.WeeksSincePeak = 10
	res, err = Generate(input(t, domain.DistanceMarathon, 18, athlete))
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeRebuildStrides, res.Themes[2].Theme)
}

func TestGenerateNoRebuildAboveRatio(t *testing.T) {
	athlete := domain.AthleteConstraints{InjuryReturn: true, CurrentVolumeRatio: 0.6}
	res, err := Generate(input(t, domain.DistanceMarathon, 18, athlete))
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeBase, res.Themes[0].Theme)
}

func TestGenerateTuneUps(t *testing.T) {
	athlete := domain.AthleteConstraints{
		TuneUps: []domain.TuneUpRace{
			{Date: raceDay.AddDate(0, 0, -8*7-1), Distance: domain.DistanceHalf, Purpose: domain.TuneUpThreshold},
			{Date: raceDay.AddDate(0, 0, -3*7-1), Distance: domain.Distance10K, Purpose: domain.TuneUpSharpening},
			{Date: raceDay.AddDate(0, 0, 3), Distance: domain.Distance5K, Purpose: domain.TuneUpSharpening},
		},
	}
	in := input(t, domain.DistanceMarathon, 18, athlete)
	base, err := Generate(input(t, domain.DistanceMarathon, 18, domain.AthleteConstraints{}))
	require.NoError(t, err)

	res, err := Generate(in)
	require.NoError(t, err)

	// Saturday of week 10 and of week 15.
	hard := res.Themes[9]
	assert.Equal(t, domain.ThemeTuneUpRace, hard.Theme)
	assert.True(t, strings.Contains(hard.Notes, "hard effort"))
	assert.InDelta(t, base.Themes[9].VolumeFraction*TuneUpFactor, hard.VolumeFraction, 0.0001)

	sharp := res.Themes[14]
	assert.Equal(t, domain.ThemeTuneUpRace, sharp.Theme)
	assert.True(t, strings.Contains(sharp.Notes, "controlled effort"))

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, domain.DegradeSkippedTuneUp, res.Skipped[0].Kind)
}

func TestGenerateIsDeterministic(t *testing.T) {
	athlete := domain.AthleteConstraints{
		InjuryReturn:       true,
		CurrentVolumeRatio: 0.3,
		TuneUps:            []domain.TuneUpRace{{Date: raceDay.AddDate(0, 0, -36), Distance: domain.Distance10K, Purpose: domain.TuneUpThreshold}},
	}
	a, err := Generate(input(t, domain.DistanceHalf, 14, athlete))
	require.NoError(t, err)
	b, err := Generate(input(t, domain.DistanceHalf, 14, athlete))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateRejectsBrokenPartition(t *testing.T) {
	in := input(t, domain.Distance10K, 8, domain.AthleteConstraints{})
	in.Spec.Weeks = 9
	_, err := Generate(in)
	assert.True(t, errors.Is(err, domain.ErrInvariantViolation))
}
