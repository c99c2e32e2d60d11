package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/pindoc/internal/core/domain"
)

// MockRunStore is a mock implementation of RunStore for testing
type MockRunStore struct {
	mu   sync.RWMutex
	runs []*domain.ReportRun

	SaveErr error
	PingErr error
}

// NewMockRunStore creates a new MockRunStore
func NewMockRunStore() *MockRunStore {
	return &MockRunStore{}
}

func (m *MockRunStore) Save(ctx context.Context, run *domain.ReportRun) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *MockRunStore) ListByGuild(ctx context.Context, guildID string, limit int) ([]*domain.ReportRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ReportRun
	for i := len(m.runs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if m.runs[i].GuildID == guildID {
			out = append(out, m.runs[i])
		}
	}
	return out, nil
}

func (m *MockRunStore) Ping(ctx context.Context) error {
	return m.PingErr
}

// Runs returns every saved run in save order
func (m *MockRunStore) Runs() []*domain.ReportRun {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.ReportRun(nil), m.runs...)
}
