package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/pindoc/internal/core/domain"
)

// JobQueue buffers report jobs between the gateway handler and the workers
type JobQueue interface {
	// Enqueue adds a job. Returns domain.ErrQueueFull if the queue cannot take it.
	Enqueue(ctx context.Context, job *domain.ReportJob) error

	// DequeueWithTimeout waits up to timeout for the next job.
	// Returns nil, nil if the timeout is reached with no job available.
	DequeueWithTimeout(ctx context.Context, timeout time.Duration) (*domain.ReportJob, error)

	// Len returns the number of jobs waiting
	Len() int

	// Close stops accepting jobs
	Close() error
}
