// Package file delivers reports to the local filesystem or a stream, for
// generating reports from the command line.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.DeliverySink = (*Sink)(nil)

// Sink writes a report either to Path or, when Path is empty, to Out.
// Every outcome other than a delivered report is returned as an error so a
// command line caller can exit non-zero.
type Sink struct {
	Out  io.Writer
	Path string
}

// Deliver writes the Markdown. A Path naming a directory receives the report's filename.
func (s *Sink) Deliver(_ context.Context, report *domain.Report) error {
	if s.Path == "" {
		if _, err := s.Out.Write(report.Bytes()); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		return nil
	}

	path := s.Path
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, report.Filename)
	}
	if err := os.WriteFile(path, report.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report to %s: %w", path, err)
	}
	if s.Out != nil {
		fmt.Fprintf(s.Out, "wrote %s\n", path)
	}
	return nil
}

func (s *Sink) RejectReference(_ context.Context, token string) error {
	return fmt.Errorf("found invalid channel argument => %q: %w", token, domain.ErrInvalidReference)
}

func (s *Sink) ReportFailure(_ context.Context, rangeLabel string) error {
	return fmt.Errorf("couldn't create a summary document for date range %q: %w", rangeLabel, domain.ErrFetchFailed)
}

func (s *Sink) ReportBusy(context.Context) error {
	return domain.ErrReportInProgress
}

func (s *Sink) ReportUnavailable(context.Context) error {
	return fmt.Errorf("summary documents can't be generated right now: %w", domain.ErrServiceUnavailable)
}
