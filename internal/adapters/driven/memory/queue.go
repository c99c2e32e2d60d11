package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.JobQueue = (*Queue)(nil)

// Queue is a bounded in-process job queue backed by a buffered channel.
type Queue struct {
	jobs   chan *domain.ReportJob
	mu     sync.RWMutex
	closed bool
}

// NewQueue creates a queue holding at most size jobs
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{jobs: make(chan *domain.ReportJob, size)}
}

// Enqueue adds a job without blocking. Returns domain.ErrQueueFull at capacity.
func (q *Queue) Enqueue(_ context.Context, job *domain.ReportJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("%w: queue closed", domain.ErrServiceUnavailable)
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// DequeueWithTimeout waits up to timeout for a job.
// Returns nil, nil on timeout, cancellation, or once the queue is closed and drained.
func (q *Queue) DequeueWithTimeout(ctx context.Context, timeout time.Duration) (*domain.ReportJob, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case job, ok := <-q.jobs:
		if !ok {
			return nil, nil
		}
		return job, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, nil
	}
}

func (q *Queue) Len() int { return len(q.jobs) }

// Close stops accepting jobs. Queued jobs can still be dequeued.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	return nil
}
