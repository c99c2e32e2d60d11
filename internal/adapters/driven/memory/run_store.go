package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RunStore = (*RunStore)(nil)

// DefaultRunHistory is how many runs per guild RunStore keeps
const DefaultRunHistory = 100

// RunStore keeps the latest runs of each guild in memory.
type RunStore struct {
	mu      sync.RWMutex
	runs    map[string][]*domain.ReportRun
	maxRuns int
}

// NewRunStore creates a store keeping up to maxRuns runs per guild
func NewRunStore(maxRuns int) *RunStore {
	if maxRuns <= 0 {
		maxRuns = DefaultRunHistory
	}
	return &RunStore{runs: make(map[string][]*domain.ReportRun), maxRuns: maxRuns}
}

// Save appends a run, evicting the oldest when the guild is at capacity
func (s *RunStore) Save(_ context.Context, run *domain.ReportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *run
	runs := append(s.runs[run.GuildID], &cp)
	if len(runs) > s.maxRuns {
		runs = runs[len(runs)-s.maxRuns:]
	}
	s.runs[run.GuildID] = runs
	return nil
}

// ListByGuild returns up to limit runs, newest first
func (s *RunStore) ListByGuild(_ context.Context, guildID string, limit int) ([]*domain.ReportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := s.runs[guildID]
	out := make([]*domain.ReportRun, 0, min(limit, len(runs)))
	for i := len(runs) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *runs[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *RunStore) Ping(context.Context) error { return nil }
