package file

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pindoc/internal/core/domain"
)

func testReport() *domain.Report {
	return &domain.Report{Markdown: "Important Messages\n", Filename: "summary_doc.md"}
}

func TestSink_DeliverToWriter(t *testing.T) {
	var buf bytes.Buffer
	sink := &Sink{Out: &buf}

	require.NoError(t, sink.Deliver(context.Background(), testReport()))
	assert.Equal(t, "Important Messages\n", buf.String())
}

func TestSink_DeliverToDirectory(t *testing.T) {
	dir := t.TempDir()
	sink := &Sink{Path: dir}

	require.NoError(t, sink.Deliver(context.Background(), testReport()))

	data, err := os.ReadFile(filepath.Join(dir, "summary_doc.md"))
	require.NoError(t, err)
	assert.Equal(t, "Important Messages\n", string(data))
}

func TestSink_DeliverToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "june.md")
	var buf bytes.Buffer
	sink := &Sink{Out: &buf, Path: path}

	require.NoError(t, sink.Deliver(context.Background(), testReport()))

	_, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), path)
}

func TestSink_Notices(t *testing.T) {
	sink := &Sink{}
	ctx := context.Background()

	err := sink.RejectReference(ctx, "dev")
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
	assert.Contains(t, err.Error(), `"dev"`)

	err = sink.ReportFailure(ctx, "Up until Jun 1st")
	assert.ErrorIs(t, err, domain.ErrFetchFailed)

	assert.ErrorIs(t, sink.ReportBusy(ctx), domain.ErrReportInProgress)
	assert.ErrorIs(t, sink.ReportUnavailable(ctx), domain.ErrServiceUnavailable)
}
