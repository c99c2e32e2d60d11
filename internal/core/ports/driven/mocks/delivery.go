package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/pindoc/internal/core/domain"
)

// MockDeliverySink records what would have been sent back to the requester
type MockDeliverySink struct {
	mu sync.Mutex

	Reports  []*domain.Report
	Rejected []string
	Failures []string
	Busy     int
	Down     int

	// DeliverErr is returned from Deliver when set
	DeliverErr error
}

// NewMockDeliverySink creates an empty sink
func NewMockDeliverySink() *MockDeliverySink {
	return &MockDeliverySink{}
}

func (m *MockDeliverySink) Deliver(ctx context.Context, report *domain.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeliverErr != nil {
		return m.DeliverErr
	}
	m.Reports = append(m.Reports, report)
	return nil
}

func (m *MockDeliverySink) RejectReference(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rejected = append(m.Rejected, token)
	return nil
}

func (m *MockDeliverySink) ReportFailure(ctx context.Context, rangeLabel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures = append(m.Failures, rangeLabel)
	return nil
}

func (m *MockDeliverySink) ReportBusy(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Busy++
	return nil
}

func (m *MockDeliverySink) ReportUnavailable(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Down++
	return nil
}
