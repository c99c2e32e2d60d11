package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.JobQueue = (*Queue)(nil)

const jobList = "pindoc:jobs"

// enqueueScript pushes ARGV[2] unless the list already holds ARGV[1] entries.
var enqueueScript = redis.NewScript(`
	if redis.call("llen", KEYS[1]) >= tonumber(ARGV[1]) then
		return 0
	end
	redis.call("rpush", KEYS[1], ARGV[2])
	return 1
`)

// Queue implements JobQueue as a bounded Redis list, so every bot instance
// sharing the server can pick up report jobs.
type Queue struct {
	client  *redis.Client
	maxSize int
	closed  atomic.Bool
}

// NewQueue creates a Redis-backed job queue holding at most maxSize jobs.
func NewQueue(client *redis.Client, maxSize int) (*Queue, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: queue size must be positive", domain.ErrInvalidInput)
	}
	return &Queue{client: client, maxSize: maxSize}, nil
}

// Enqueue appends a job. Returns domain.ErrQueueFull when the list is at capacity.
func (q *Queue) Enqueue(ctx context.Context, job *domain.ReportJob) error {
	if job == nil {
		return errors.New("job is required")
	}
	if q.closed.Load() {
		return fmt.Errorf("%w: queue closed", domain.ErrServiceUnavailable)
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ID, err)
	}

	pushed, err := enqueueScript.Run(ctx, q.client, []string{jobList}, q.maxSize, data).Int()
	if err != nil {
		return fmt.Errorf("enqueue job %s: %w", job.ID, err)
	}
	if pushed == 0 {
		return domain.ErrQueueFull
	}
	return nil
}

// DequeueWithTimeout pops the oldest job, blocking up to timeout.
// Returns nil, nil on timeout or cancellation.
func (q *Queue) DequeueWithTimeout(ctx context.Context, timeout time.Duration) (*domain.ReportJob, error) {
	res, err := q.client.BLPop(ctx, timeout, jobList).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue job: %w", err)
	}
	if len(res) != 2 {
		return nil, nil
	}

	var job domain.ReportJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		// A malformed entry is already off the list, drop it.
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &job, nil
}

// Len returns the number of waiting jobs, or 0 if Redis is unreachable.
func (q *Queue) Len() int {
	n, err := q.client.LLen(context.Background(), jobList).Result()
	if err != nil {
		return 0
	}
	return int(n)
}

// Close stops accepting new jobs. Jobs already queued stay in Redis.
func (q *Queue) Close() error {
	q.closed.Store(true)
	return nil
}
