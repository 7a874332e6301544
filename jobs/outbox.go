package jobs

import (
	"context"

	"github.com/hibiken/asynq"
)

// Client submits outbox tasks to the queue. It satisfies the storage layer's
// Outbox interface so every local mutation ends up as a durable sync task.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueuePush schedules a remote push for one record.
func (c *Client) EnqueuePush(ctx context.Context, entity string, record any) error {
	task, err := NewSyncPushTask(entity, record)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueSync), asynq.MaxRetry(10))
	return err
}

// EnqueueDelete schedules a remote delete for one record.
func (c *Client) EnqueueDelete(ctx context.Context, entity, id string) error {
	task, err := NewSyncDeleteTask(entity, id)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueSync), asynq.MaxRetry(10))
	return err
}

// EnqueueReconcile schedules a reconcile run.
func (c *Client) EnqueueReconcile(ctx context.Context, entity string, force bool) error {
	task, err := NewSyncReconcileTask(entity, force)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueSync), asynq.MaxRetry(3))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
