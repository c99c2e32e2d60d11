package driven

import (
	"context"

	"github.com/custodia-labs/pindoc/internal/core/domain"
)

// RunStore keeps the history of report generation attempts
type RunStore interface {
	// Save records a finished run
	Save(ctx context.Context, run *domain.ReportRun) error

	// ListByGuild returns the most recent runs for a guild, newest first
	ListByGuild(ctx context.Context, guildID string, limit int) ([]*domain.ReportRun, error)

	// Ping checks if the store backend is healthy
	Ping(ctx context.Context) error
}
