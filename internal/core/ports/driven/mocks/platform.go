package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/pindoc/internal/core/domain"
)

// MockPlatform is an in-memory chat platform for testing.
// Containers keep insertion order; pins are keyed by channel ID.
type MockPlatform struct {
	mu         sync.RWMutex
	containers []*domain.Container
	pins       map[string][]*domain.PinnedMessage

	// Per-call failure injection (optional)
	NamespaceErr error
	ListErr      error
	PinErrs      map[string]error // key: channel ID
	FetchErrs    map[string]error // key: container ID

	// Calls records fetches in order, e.g. "pins:123", "list:guild", "fetch:456"
	Calls []string
}

// NewMockPlatform creates an empty MockPlatform
func NewMockPlatform() *MockPlatform {
	return &MockPlatform{
		pins:      make(map[string][]*domain.PinnedMessage),
		PinErrs:   make(map[string]error),
		FetchErrs: make(map[string]error),
	}
}

// AddContainer registers a container
func (m *MockPlatform) AddContainer(c *domain.Container) *domain.Container {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.containers = append(m.containers, c)
	return c
}

// AddPins registers pinned messages for a channel
func (m *MockPlatform) AddPins(channelID string, msgs ...*domain.PinnedMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pins[channelID] = append(m.pins[channelID], msgs...)
}

func (m *MockPlatform) record(call string) {
	m.mu.Lock()
	m.Calls = append(m.Calls, call)
	m.mu.Unlock()
}

func (m *MockPlatform) Namespace(ctx context.Context, guildID string) (*domain.Namespace, error) {
	m.record("namespace:" + guildID)
	if m.NamespaceErr != nil {
		return nil, m.NamespaceErr
	}
	return domain.NewNamespace(guildID, m.guildContainers(guildID)), nil
}

func (m *MockPlatform) Container(ctx context.Context, id string) (*domain.Container, error) {
	m.record("fetch:" + id)
	if err := m.FetchErrs[id]; err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.containers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPlatform) ListChannels(ctx context.Context, guildID string) ([]*domain.Container, error) {
	m.record("list:" + guildID)
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.guildContainers(guildID), nil
}

func (m *MockPlatform) PinnedMessages(ctx context.Context, channel *domain.Container) ([]*domain.PinnedMessage, error) {
	m.record("pins:" + channel.ID)
	if err := m.PinErrs[channel.ID]; err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.PinnedMessage(nil), m.pins[channel.ID]...), nil
}

func (m *MockPlatform) guildContainers(guildID string) []*domain.Container {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Container
	for _, c := range m.containers {
		if c.GuildID == guildID {
			out = append(out, c)
		}
	}
	return out
}
