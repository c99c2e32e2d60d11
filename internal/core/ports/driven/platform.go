package driven

import (
	"context"

	"github.com/custodia-labs/pindoc/internal/core/domain"
)

// NamespaceProvider returns the containers of a guild at the time of the call.
// Successive calls may return different snapshots.
type NamespaceProvider interface {
	Namespace(ctx context.Context, guildID string) (*domain.Namespace, error)
}

// ContainerFetcher looks up a single container by ID, in any guild.
// Returns domain.ErrNotFound if the ID is unknown.
type ContainerFetcher interface {
	Container(ctx context.Context, id string) (*domain.Container, error)
}

// ChannelLister returns the live list of a guild's containers with their
// parent category links, in enumeration order
type ChannelLister interface {
	ListChannels(ctx context.Context, guildID string) ([]*domain.Container, error)
}

// PinnedMessageProvider returns the pinned messages of a channel.
// Fails if the channel is unreachable.
type PinnedMessageProvider interface {
	PinnedMessages(ctx context.Context, channel *domain.Container) ([]*domain.PinnedMessage, error)
}

// Platform groups everything the report engine needs from the chat platform
type Platform interface {
	NamespaceProvider
	ContainerFetcher
	ChannelLister
	PinnedMessageProvider
}
