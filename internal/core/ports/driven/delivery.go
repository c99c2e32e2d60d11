package driven

import (
	"context"

	"github.com/custodia-labs/pindoc/internal/core/domain"
)

// DeliverySink hands the outcome of one report request back to whoever asked for it
type DeliverySink interface {
	// Deliver sends a finished report, usually as a named attachment
	Deliver(ctx context.Context, report *domain.Report) error

	// RejectReference tells the requester an argument matched no usable container
	RejectReference(ctx context.Context, token string) error

	// ReportFailure tells the requester the report for the given range could not be built
	ReportFailure(ctx context.Context, rangeLabel string) error

	// ReportBusy tells the requester another report is being generated for the guild
	ReportBusy(ctx context.Context) error

	// ReportUnavailable tells the requester a backend needed for reports could not be reached
	ReportUnavailable(ctx context.Context) error
}
