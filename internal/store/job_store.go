package store

import (
	"context"
	"errors"

	"github.com/dunamismax/skinflow/internal/domain"
)

var ErrJobNotFound = errors.New("job not found")

type JobStore interface {
	Create(ctx context.Context, job domain.Job) error
	Get(ctx context.Context, id string) (domain.Job, bool, error)
	UpdateStatus(ctx context.Context, id, status string) (domain.Job, error)
}

// UsageStore records per-job compute accounting written by the worker.
type UsageStore interface {
	CreateUsageLog(ctx context.Context, usage domain.UsageLog) error
}
