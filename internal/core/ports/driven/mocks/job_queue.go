package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/pindoc/internal/core/domain"
)

// MockJobQueue is an unbounded in-memory JobQueue with injectable failures
type MockJobQueue struct {
	mu     sync.Mutex
	jobs   []*domain.ReportJob
	closed bool

	// EnqueueErr is returned from Enqueue when set
	EnqueueErr error
	// DequeueFn replaces the default dequeue when set
	DequeueFn func() (*domain.ReportJob, error)
}

// NewMockJobQueue creates an empty queue
func NewMockJobQueue() *MockJobQueue {
	return &MockJobQueue{}
}

func (m *MockJobQueue) Enqueue(ctx context.Context, job *domain.ReportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EnqueueErr != nil {
		return m.EnqueueErr
	}
	m.jobs = append(m.jobs, job)
	return nil
}

// DequeueWithTimeout pops a job, or sleeps for a short slice of timeout when empty
func (m *MockJobQueue) DequeueWithTimeout(ctx context.Context, timeout time.Duration) (*domain.ReportJob, error) {
	if m.DequeueFn != nil {
		return m.DequeueFn()
	}

	m.mu.Lock()
	if len(m.jobs) > 0 {
		job := m.jobs[0]
		m.jobs = m.jobs[1:]
		m.mu.Unlock()
		return job, nil
	}
	m.mu.Unlock()

	select {
	case <-time.After(min(timeout, 10*time.Millisecond)):
	case <-ctx.Done():
	}
	return nil, nil
}

func (m *MockJobQueue) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

func (m *MockJobQueue) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called
func (m *MockJobQueue) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
