package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"tours-backend/internal/infrastructure/email"
	"tours-backend/internal/shared"
)

// Client enqueues background tasks for the worker process.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr, password string, db int) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr, Password: password, DB: db}),
	}
}

// SendWelcome queues the welcome email for a freshly signed up user.
func (c *Client) SendWelcome(ctx context.Context, to, name, accountURL string) error {
	payload, err := json.Marshal(email.WelcomePayload{Email: to, Name: name, AccountURL: accountURL})
	if err != nil {
		return fmt.Errorf("marshal welcome payload: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx,
		asynq.NewTask(shared.TypeSendWelcomeEmail, payload),
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("enqueue welcome email: %w", err)
	}

	log.Debug().Str("task_id", info.ID).Str("queue", info.Queue).Msg("Welcome email enqueued")
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
