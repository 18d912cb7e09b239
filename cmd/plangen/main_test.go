package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateTable(t *testing.T) {
	out, err := run(t, "generate", "--distance", "10k", "--weeks", "8", "--tier", "low", "--days", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "10k | 8 weeks | low tier | 4 days/week")
	assert.Contains(t, out, "Week | Phase | Theme | Miles | Long | Quality")
}

func TestGenerateOneWeekWithAudit(t *testing.T) {
	out, err := run(t, "generate", "-d", "half", "-w", "12", "--days", "5", "--goal-date", "2027-04-25", "--week", "12", "--audit")
	require.NoError(t, err)
	assert.Contains(t, out, "Week 12")
	assert.Contains(t, out, "Sun 25 Apr")
	assert.Contains(t, out, "Week | Day | Phase | Type | Template | Relaxed")
}

func TestGenerateJSON(t *testing.T) {
	out, err := run(t, "generate", "--distance", "marathon", "--weeks", "16", "--tier", "high", "--days", "6", "--json")
	require.NoError(t, err)

	var p domain.Plan
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, domain.DistanceMarathon, p.Spec.Distance)
	assert.Len(t, p.Workouts, 16*7)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing distance", []string{"generate", "--weeks", "8"}, "distance"},
		{"bad distance", []string{"generate", "--distance", "50k", "--weeks", "8"}, "invalid input"},
		{"one day", []string{"generate", "--distance", "5k", "--weeks", "8", "--days", "1"}, "unsatisfiable"},
		{"week out of range", []string{"generate", "--distance", "5k", "--weeks", "8", "--week", "9"}, "outside"},
		{"bad goal time", []string{"generate", "--distance", "5k", "--weeks", "8", "--goal-time", "soon"}, "goal_time"},
		{"misspelled exclude", []string{"generate", "--distance", "5k", "--weeks", "8", "--exclude", "threshhold"}, "threshhold"},
		{"missing catalog", []string{"generate", "--distance", "5k", "--weeks", "8", "--catalog", "testdata/nope.yaml"}, "nope.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want) || strings.Contains(out, tt.want),
				"expected %q in error %q", tt.want, err)
		})
	}
}

func TestTemplatesCommand(t *testing.T) {
	out, err := run(t, "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "ID | Type | Phases")

	out, err = run(t, "templates", "--json")
	require.NoError(t, err)
	var ts []domain.WorkoutTemplate
	require.NoError(t, json.Unmarshal([]byte(out), &ts))
	assert.NotEmpty(t, ts)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}
