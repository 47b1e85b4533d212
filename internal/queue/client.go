// Package queue wraps the asynq task queue used to hand audiobook jobs to
// the worker process.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/narrato/narrato/internal/config"
)

type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueAudiobookSynthesize schedules one audiobook job. The generous
// timeout covers whole-book synthesis on CPU; only one transport-level
// retry since synthesis failures are terminal and recorded on the job row.
func (c *Client) EnqueueAudiobookSynthesize(payload AudiobookSynthesizePayload) error {
	return c.enqueue(TypeAudiobookSynthesize, payload,
		asynq.MaxRetry(1), asynq.Timeout(2*time.Hour))
}

func (c *Client) enqueue(taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	if _, err := c.client.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
