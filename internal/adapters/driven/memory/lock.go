// Package memory holds single-process implementations of the driven ports,
// used when the bot runs without Redis or PostgreSQL.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DistributedLock = (*Lock)(nil)

// Lock is a process-local lock table with expiry.
type Lock struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

// NewLock creates an empty lock table
func NewLock() *Lock {
	return &Lock{held: make(map[string]time.Time), clock: time.Now}
}

// Acquire takes name for ttl unless an unexpired holder exists
func (l *Lock) Acquire(_ context.Context, name string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if expiry, ok := l.held[name]; ok && now.Before(expiry) {
		return false, nil
	}
	l.held[name] = now.Add(ttl)
	return true, nil
}

// Release drops name
func (l *Lock) Release(_ context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, name)
	return nil
}

func (l *Lock) Ping(context.Context) error { return nil }
