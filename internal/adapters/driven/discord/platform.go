package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
)

// Ensure Platform implements the interface.
var _ driven.Platform = (*Platform)(nil)

const webBaseURL = "https://discord.com/channels"

// API is the subset of the Discord REST client used by Platform.
// *discordgo.Session satisfies it.
type API interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	ChannelMessagesPinned(channelID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// Platform reads guild channels and pinned messages from Discord.
// When a gateway state cache is available, lookups hit it before REST.
type Platform struct {
	api      API
	state    *discordgo.State
	sanitize func(*discordgo.Message) string
}

// NewPlatform creates a Platform backed by a discordgo session
func NewPlatform(session *discordgo.Session) *Platform {
	p := &Platform{api: session, state: session.State}
	p.sanitize = func(m *discordgo.Message) string {
		content, err := m.ContentWithMoreMentionsReplaced(session)
		if err != nil {
			content = m.ContentWithMentionsReplaced()
		}
		return escapeMassMentions(content)
	}
	return p
}

// NewPlatformWithAPI creates a Platform without a state cache
func NewPlatformWithAPI(api API) *Platform {
	return &Platform{
		api: api,
		sanitize: func(m *discordgo.Message) string {
			return escapeMassMentions(m.ContentWithMentionsReplaced())
		},
	}
}

// Namespace returns the guild's channels, preferring the gateway cache
func (p *Platform) Namespace(ctx context.Context, guildID string) (*domain.Namespace, error) {
	if p.state != nil {
		if ns, ok := p.cachedNamespace(guildID); ok {
			return ns, nil
		}
	}

	channels, err := p.api.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list guild channels: %w", mapError(err))
	}
	return domain.NewNamespace(guildID, toContainers(channels)), nil
}

// Container looks a channel or category up by ID
func (p *Platform) Container(ctx context.Context, id string) (*domain.Container, error) {
	if p.state != nil {
		if c, ok := p.cachedContainer(id); ok {
			return c, nil
		}
	}

	ch, err := p.api.Channel(id, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get channel %s: %w", id, mapError(err))
	}
	return toContainer(ch), nil
}

// ListChannels fetches the live channel list from REST, ordered as Discord shows it
func (p *Platform) ListChannels(ctx context.Context, guildID string) ([]*domain.Container, error) {
	channels, err := p.api.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list guild channels: %w", mapError(err))
	}

	containers := toContainers(channels)
	sort.SliceStable(containers, func(i, j int) bool {
		return containers[i].Position < containers[j].Position
	})
	return containers, nil
}

// PinnedMessages fetches the pins of a channel
func (p *Platform) PinnedMessages(ctx context.Context, channel *domain.Container) ([]*domain.PinnedMessage, error) {
	msgs, err := p.api.ChannelMessagesPinned(channel.ID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get pins of %s: %w", channel.ID, mapError(err))
	}

	pins := make([]*domain.PinnedMessage, len(msgs))
	for i, m := range msgs {
		pins[i] = &domain.PinnedMessage{
			ID:        m.ID,
			ChannelID: channel.ID,
			Timestamp: m.Timestamp,
			Content:   p.sanitize(m),
			Permalink: MessageURL(channel.GuildID, channel.ID, m.ID),
		}
	}
	return pins, nil
}

// cachedNamespace copies the guild's channels out of the gateway cache.
// The gateway goroutine mutates cached channels in place, so reads hold the state lock.
func (p *Platform) cachedNamespace(guildID string) (*domain.Namespace, bool) {
	guild, err := p.state.Guild(guildID)
	if err != nil {
		return nil, false
	}

	p.state.RLock()
	defer p.state.RUnlock()
	if len(guild.Channels) == 0 {
		return nil, false
	}
	containers := toContainers(guild.Channels)
	for _, c := range containers {
		if c.GuildID == "" {
			c.GuildID = guildID
			c.URL = ChannelURL(guildID, c.ID)
		}
	}
	return domain.NewNamespace(guildID, containers), true
}

func (p *Platform) cachedContainer(id string) (*domain.Container, bool) {
	ch, err := p.state.Channel(id)
	if err != nil {
		return nil, false
	}

	p.state.RLock()
	defer p.state.RUnlock()
	return toContainer(ch), true
}

// ChannelURL returns the web link of a channel
func ChannelURL(guildID, channelID string) string {
	return fmt.Sprintf("%s/%s/%s", webBaseURL, guildID, channelID)
}

// MessageURL returns the permalink of a message
func MessageURL(guildID, channelID, messageID string) string {
	return fmt.Sprintf("%s/%s/%s/%s", webBaseURL, guildID, channelID, messageID)
}

func toContainers(channels []*discordgo.Channel) []*domain.Container {
	containers := make([]*domain.Container, len(channels))
	for i, ch := range channels {
		containers[i] = toContainer(ch)
	}
	return containers
}

func toContainer(ch *discordgo.Channel) *domain.Container {
	return &domain.Container{
		ID:       ch.ID,
		GuildID:  ch.GuildID,
		Name:     ch.Name,
		Kind:     kindOf(ch.Type),
		ParentID: ch.ParentID,
		Position: ch.Position,
		URL:      ChannelURL(ch.GuildID, ch.ID),
	}
}

func kindOf(t discordgo.ChannelType) domain.ContainerKind {
	switch t {
	case discordgo.ChannelTypeGuildText:
		return domain.ContainerKindChannel
	case discordgo.ChannelTypeGuildCategory:
		return domain.ContainerKindCategory
	default:
		return domain.ContainerKindOther
	}
}

// escapeMassMentions keeps quoted content from pinging everyone when the report is posted
func escapeMassMentions(content string) string {
	r := strings.NewReplacer("@everyone", "@\u200beveryone", "@here", "@\u200bhere")
	return r.Replace(content)
}

func mapError(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %v", domain.ErrForbidden, err)
		}
	}
	if errors.Is(err, discordgo.ErrStateNotFound) {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	return err
}
