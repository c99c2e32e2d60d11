package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
)

// DefaultEmptySectionTemplate is shown for sections with nothing pinned in range.
// {link} is replaced with the channel URL.
const DefaultEmptySectionTemplate = "Nothing interesting, but check the channel for [more discussions]({link})"

// RenderSource is what document nodes fetch from while rendering
type RenderSource interface {
	driven.ChannelLister
	driven.PinnedMessageProvider
}

// RenderContext carries the collaborators and settings shared by a render pass
type RenderContext struct {
	Source        RenderSource
	Today         time.Time
	EmptyTemplate string
}

func (rc *RenderContext) placeholder(c *domain.Container) string {
	tmpl := rc.EmptyTemplate
	if tmpl == "" {
		tmpl = DefaultEmptySectionTemplate
	}
	return strings.ReplaceAll(tmpl, "{link}", c.URL)
}

// DocumentNode renders one piece of the report. A node either returns its
// whole Markdown fragment or an error; partial output is never returned.
type DocumentNode interface {
	Render(ctx context.Context, rc *RenderContext) (string, error)
}

// NewSection creates the node for a top-level reference.
// Returns false for containers that are neither channels nor categories.
func NewSection(c *domain.Container, interval domain.DateInterval) (DocumentNode, bool) {
	switch c.Kind {
	case domain.ContainerKindChannel:
		return &ChannelSection{Channel: c, Interval: interval}, true
	case domain.ContainerKindCategory:
		return &CategorySection{Category: c, Interval: interval}, true
	default:
		return nil, false
	}
}

// RenderSubsection renders node one heading level deeper.
// Empty fragments stay empty.
func RenderSubsection(ctx context.Context, node DocumentNode, rc *RenderContext) (string, error) {
	doc, err := node.Render(ctx, rc)
	if err != nil || doc == "" {
		return doc, err
	}
	return "#" + doc, nil
}

// Root is the top of the report: a title for the date range followed by one
// section per resolved argument, in argument order.
type Root struct {
	Interval domain.DateInterval
	Sections []DocumentNode
}

// NewRoot creates an empty report for interval
func NewRoot(interval domain.DateInterval) *Root {
	return &Root{Interval: interval}
}

// Add appends a section for c. Unsupported kinds are ignored.
func (r *Root) Add(c *domain.Container) bool {
	node, ok := NewSection(c, r.Interval)
	if ok {
		r.Sections = append(r.Sections, node)
	}
	return ok
}

// Title returns the report heading for the given day
func (r *Root) Title(today time.Time) string {
	return "Important Messages: " + r.Interval.Label(today)
}

func (r *Root) Render(ctx context.Context, rc *RenderContext) (string, error) {
	title := r.Title(rc.Today)
	doc := make([]string, 0, len(r.Sections)+2)
	doc = append(doc, title, strings.Repeat("=", len(title)))

	for _, section := range r.Sections {
		fragment, err := section.Render(ctx, rc)
		if err != nil {
			return "", err
		}
		doc = append(doc, fragment)
	}
	return strings.Join(doc, "\n"), nil
}

// ChannelSection lists the pinned messages of one channel that fall in the interval.
// As a subsection of a category it renders nothing when no message matches.
type ChannelSection struct {
	Channel    *domain.Container
	Interval   domain.DateInterval
	Subsection bool
}

func (s *ChannelSection) Render(ctx context.Context, rc *RenderContext) (string, error) {
	pins, err := rc.Source.PinnedMessages(ctx, s.Channel)
	if err != nil {
		return "", fmt.Errorf("pinned messages of #%s: %w", s.Channel.Name, err)
	}

	doc := []string{"## " + s.Channel.Name}
	for _, msg := range pins {
		if !s.Interval.Contains(msg.Timestamp) {
			continue
		}
		doc = append(doc, fmt.Sprintf("* %s ([source](%s))", msg.Content, msg.Permalink))
	}

	if len(doc) == 1 {
		if s.Subsection {
			return "", nil
		}
		doc = append(doc, rc.placeholder(s.Channel))
	}
	doc = append(doc, "")
	return strings.Join(doc, "\n"), nil
}

// CategorySection rolls up the text channels of a category. The channel list
// is fetched at render time, so it may differ from the snapshot used to
// resolve the argument.
type CategorySection struct {
	Category *domain.Container
	Interval domain.DateInterval
}

func (s *CategorySection) Render(ctx context.Context, rc *RenderContext) (string, error) {
	channels, err := rc.Source.ListChannels(ctx, s.Category.GuildID)
	if err != nil {
		return "", fmt.Errorf("channels of category %s: %w", s.Category.Name, err)
	}

	var doc strings.Builder
	doc.WriteString("## " + s.Category.Name + "\n")

	empty := true
	for _, c := range channels {
		if c.ParentID != s.Category.ID || !c.IsChannel() {
			continue
		}
		child := &ChannelSection{Channel: c, Interval: s.Interval, Subsection: true}
		fragment, err := RenderSubsection(ctx, child, rc)
		if err != nil {
			return "", err
		}
		if fragment == "" {
			continue
		}
		doc.WriteString(fragment)
		empty = false
	}

	if empty {
		doc.WriteString(rc.placeholder(s.Category) + "\n")
	}
	return doc.String(), nil
}
