package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
	"github.com/Nmdk1/StrideIQ-sub003/internal/plans"
)

type fakeRegenerator struct {
	calls     int
	athleteID uuid.UUID
	req       plans.Request
	err       error
}

func (f *fakeRegenerator) Regenerate(_ context.Context, athleteID uuid.UUID, req plans.Request) (*domain.Plan, error) {
	f.calls++
	f.athleteID = athleteID
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Plan{ID: uuid.New()}, nil
}

func task(t *testing.T, p GeneratePlanPayload) *asynq.Task {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return asynq.NewTask(TaskGeneratePlan, b)
}

func TestGeneratePlanHandler(t *testing.T) {
	athleteID := uuid.New()
	req := plans.Request{Distance: "half", Weeks: 12, Tier: "mid", DaysPerWeek: 5}

	t.Run("success", func(t *testing.T) {
		svc := &fakeRegenerator{}
		h := NewGeneratePlanHandler(svc, zerolog.Nop())

		err := h.ProcessTask(context.Background(), task(t, GeneratePlanPayload{AthleteID: athleteID.String(), Request: req}))
		require.NoError(t, err)
		assert.Equal(t, 1, svc.calls)
		assert.Equal(t, athleteID, svc.athleteID)
		assert.Equal(t, req, svc.req)
	})

	t.Run("bad payload is dropped", func(t *testing.T) {
		svc := &fakeRegenerator{}
		h := NewGeneratePlanHandler(svc, zerolog.Nop())

		err := h.ProcessTask(context.Background(), asynq.NewTask(TaskGeneratePlan, []byte("{not json")))
		assert.NoError(t, err)
		assert.Zero(t, svc.calls)
	})

	t.Run("bad athlete id is dropped", func(t *testing.T) {
		svc := &fakeRegenerator{}
		h := NewGeneratePlanHandler(svc, zerolog.Nop())

		err := h.ProcessTask(context.Background(), task(t, GeneratePlanPayload{AthleteID: "athlete-7", Request: req}))
		assert.NoError(t, err)
		assert.Zero(t, svc.calls)
	})

	t.Run("permanent error is dropped", func(t *testing.T) {
		svc := &fakeRegenerator{err: fmt.Errorf("%w: days per week must be 1-7, got 9", domain.ErrInvalidInput)}
		h := NewGeneratePlanHandler(svc, zerolog.Nop())

		err := h.ProcessTask(context.Background(), task(t, GeneratePlanPayload{AthleteID: athleteID.String(), Request: req}))
		assert.NoError(t, err)
		assert.Equal(t, 1, svc.calls)
	})

	t.Run("transient error is retried", func(t *testing.T) {
		svc := &fakeRegenerator{err: errors.New("store plan: failed to begin transaction: connection refused")}
		h := NewGeneratePlanHandler(svc, zerolog.Nop())

		err := h.ProcessTask(context.Background(), task(t, GeneratePlanPayload{AthleteID: athleteID.String(), Request: req}))
		assert.Error(t, err)
	})
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid input", fmt.Errorf("wrap: %w", domain.ErrInvalidInput), false},
		{"unsatisfiable", domain.ErrUnsatisfiableConstraint, false},
		{"invariant", fmt.Errorf("week 3: %w", domain.ErrInvariantViolation), false},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), true},
		{"connection", errors.New("dial tcp: connection refused"), true},
		{"serialization", errors.New("ERROR: could not serialize access due to serialization failure"), true},
		{"other", errors.New("failed to decode plan"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}
