package services

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
)

// channelIDPattern matches a bare snowflake or a <#snowflake> mention
var channelIDPattern = regexp.MustCompile(`^(?:<#)?([0-9]+)>?$`)

// ReferenceResolver maps a free-text argument to a channel or category of a guild
type ReferenceResolver struct {
	fetcher driven.ContainerFetcher
	logger  *slog.Logger
}

// NewReferenceResolver creates a resolver that looks containers up through fetcher
func NewReferenceResolver(fetcher driven.ContainerFetcher, logger *slog.Logger) *ReferenceResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReferenceResolver{fetcher: fetcher, logger: logger}
}

// Resolve returns the container token refers to within ns.
// Failures are reported as *domain.ReferenceError.
func (r *ReferenceResolver) Resolve(ctx context.Context, ns *domain.Namespace, token string) (*domain.Container, error) {
	r.logger.Debug("resolving channel reference", "guild_id", ns.GuildID, "token", token)

	if m := channelIDPattern.FindStringSubmatch(token); m != nil {
		return r.resolveID(ctx, ns, token, m[1])
	}
	return r.resolveName(ctx, ns, token)
}

func (r *ReferenceResolver) resolveID(ctx context.Context, ns *domain.Namespace, token, id string) (*domain.Container, error) {
	c, err := r.fetcher.Container(ctx, id)
	if err != nil {
		r.logger.Debug("channel lookup failed", "channel_id", id, "error", err)
		return nil, &domain.ReferenceError{Token: token, Reason: "unknown channel"}
	}
	if c.GuildID != ns.GuildID {
		return nil, &domain.ReferenceError{Token: token, Reason: "channel belongs to another server"}
	}
	if !c.Kind.Reportable() {
		return nil, &domain.ReferenceError{Token: token, Reason: "not a text channel or category"}
	}
	return c, nil
}

// resolveName scans every container once, folding channel names into the
// text lane and each distinct parent category into the category lane.
// The scan never stops early: a later match can still upgrade or collapse a lane.
func (r *ReferenceResolver) resolveName(ctx context.Context, ns *domain.Namespace, token string) (*domain.Container, error) {
	query := strings.ToLower(token)

	var text, category domain.MatchState
	categories := make(map[string]*domain.Container)

	for _, c := range ns.Containers {
		if c.IsChannel() {
			text = domain.Fold(text, domain.Classify(c, query))
		}

		if !c.HasParent() {
			continue
		}
		if _, seen := categories[c.ParentID]; seen {
			continue
		}
		parent, err := r.fetcher.Container(ctx, c.ParentID)
		if err != nil {
			r.logger.Debug("category lookup failed", "category_id", c.ParentID, "error", err)
			continue
		}
		if !parent.IsCategory() {
			continue
		}
		category = domain.Fold(category, domain.Classify(parent, query))
		categories[c.ParentID] = parent
	}

	r.logger.Debug("fuzzy scan finished",
		"token", token,
		"text_match", text.Strength.String(),
		"category_match", category.Strength.String(),
	)

	if id, ok := text.Resolved(); ok {
		if c, found := ns.Get(id); found {
			return c, nil
		}
	}
	if id, ok := category.Resolved(); ok {
		return categories[id], nil
	}
	return nil, &domain.ReferenceError{Token: token}
}
