package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Client enqueues plan generation tasks.
type Client struct {
	c   *asynq.Client
	log zerolog.Logger
}

func NewClient(redisAddr string, logger zerolog.Logger) *Client {
	return &Client{
		c:   asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}),
		log: logger.With().Str("component", "asynq").Logger(),
	}
}

// EnqueueGeneratePlan queues a regeneration for the athlete.
func (c *Client) EnqueueGeneratePlan(ctx context.Context, p GeneratePlanPayload) (*asynq.TaskInfo, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(TaskGeneratePlan, payload)
	info, err := c.c.EnqueueContext(ctx, task,
		asynq.Queue(QueuePlans),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		c.log.Error().Err(err).Str("athlete_id", p.AthleteID).Msg("enqueue failed")
		return nil, err
	}
	c.log.Info().Str("id", info.ID).Str("queue", info.Queue).Int("max_retry", info.MaxRetry).Msg("enqueued task")
	return info, nil
}

func (c *Client) Close() error { return c.c.Close() }
