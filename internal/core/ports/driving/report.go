package driving

import (
	"context"

	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
)

// ReportService builds pinned-message reports for a guild
type ReportService interface {
	// Generate consumes the request arguments (optional dates, then channel
	// references) and renders the report. Errors are *domain.ReferenceError,
	// *domain.FetchError, domain.ErrReportInProgress or infrastructure errors.
	Generate(ctx context.Context, req domain.ReportRequest) (*domain.Report, error)

	// Publish generates the report and hands the outcome to the sink.
	// Only delivery problems and unexpected errors are returned.
	Publish(ctx context.Context, req domain.ReportRequest, sink driven.DeliverySink) error

	// RecentRuns lists the latest generation attempts for a guild
	RecentRuns(ctx context.Context, guildID string, limit int) ([]*domain.ReportRun, error)
}
