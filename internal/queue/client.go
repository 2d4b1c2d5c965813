package queue

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
)

const (
	defaultMaxRetry = 5
	defaultTimeout  = 2 * time.Minute
)

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(redisOpt asynq.RedisClientOpt, queueName string) *Client {
	return &Client{
		client: asynq.NewClient(redisOpt),
		queue:  queueName,
	}
}

// EnqueueProcessSkin schedules a skin job. The job id doubles as the task
// id so a job started twice is only queued once.
func (c *Client) EnqueueProcessSkin(ctx context.Context, payload ProcessSkinPayload) (*asynq.TaskInfo, error) {
	task, err := NewProcessSkinTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(
		ctx,
		task,
		asynq.Queue(c.queue),
		asynq.TaskID(payload.JobID),
		asynq.MaxRetry(defaultMaxRetry),
		asynq.Timeout(defaultTimeout),
	)
}

func (c *Client) Close() error {
	return c.client.Close()
}
