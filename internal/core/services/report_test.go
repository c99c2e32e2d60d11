package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven/mocks"
)

type reportFixture struct {
	platform *mocks.MockPlatform
	parser   *mocks.MockDateParser
	lock     *mocks.MockDistributedLock
	runs     *mocks.MockRunStore
	sink     *mocks.MockDeliverySink
}

func newReportFixture() *reportFixture {
	f := &reportFixture{
		platform: mocks.NewMockPlatform(),
		parser: mocks.NewMockDateParser(map[string]time.Time{
			"6/1":  date(2024, time.June, 1),
			"6/10": date(2024, time.June, 10),
		}),
		lock: mocks.NewMockDistributedLock(),
		runs: mocks.NewMockRunStore(),
		sink: mocks.NewMockDeliverySink(),
	}
	f.platform.AddContainer(category("10", "Engineering"))
	f.platform.AddContainer(channel("11", "backend", "10"))
	f.platform.AddContainer(channel("12", "general", ""))
	f.platform.AddPins("11", pin("1", date(2024, time.June, 2), "migrations done"))
	f.platform.AddPins("12", pin("2", date(2024, time.June, 12), "welcome!"))
	return f
}

func (f *reportFixture) service() *reportService {
	return NewReportService(ReportServiceConfig{
		Platform:   f.platform,
		DateParser: f.parser,
		Lock:       f.lock,
		RunStore:   f.runs,
		Clock:      func() time.Time { return time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC) },
	}).(*reportService)
}

func TestReportService_Generate(t *testing.T) {
	f := newReportFixture()

	report, err := f.service().Generate(context.Background(), domain.ReportRequest{
		GuildID:     testGuild,
		RequestedBy: "42",
		Args:        []string{"6/1", "6/10", "general", "engineering"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Jun 1st - Jun 10th", report.RangeLabel)
	assert.Equal(t, DefaultReportFilename, report.Filename)
	assert.Equal(t, domain.NewDateInterval(date(2024, time.June, 1), date(2024, time.June, 10)), report.Interval)
	assert.True(t, strings.HasPrefix(report.Markdown, "Important Messages: Jun 1st - Jun 10th\n"))
	assert.Contains(t, report.Markdown, "## general\nNothing interesting")
	assert.Contains(t, report.Markdown, "## Engineering\n### backend\n* migrations done")
	assert.Less(t, strings.Index(report.Markdown, "## general"), strings.Index(report.Markdown, "## Engineering"),
		"sections follow argument order")

	runs := f.runs.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, domain.RunStatusSucceeded, runs[0].Status)
	assert.Equal(t, 2, runs[0].Sections)
	assert.Equal(t, "42", runs[0].RequestedBy)
	assert.NotEmpty(t, runs[0].ID)

	assert.Equal(t, []string{"report:" + testGuild}, f.lock.Acquired)
	assert.Equal(t, []string{"report:" + testGuild}, f.lock.Released)
}

func TestReportService_GenerateDefaultsToEverythingUntilToday(t *testing.T) {
	f := newReportFixture()

	report, err := f.service().Generate(context.Background(), domain.ReportRequest{GuildID: testGuild, Args: []string{"general"}})

	require.NoError(t, err)
	assert.Equal(t, "Up until Jun 15th", report.RangeLabel)
	assert.Contains(t, report.Markdown, "* welcome! ([source]")
}

func TestReportService_InvalidReferenceAbortsRemainingTokens(t *testing.T) {
	f := newReportFixture()

	_, err := f.service().Generate(context.Background(), domain.ReportRequest{
		GuildID: testGuild,
		Args:    []string{"general", "nope", "backend"},
	})

	var refErr *domain.ReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "nope", refErr.Token)
	for _, call := range f.platform.Calls {
		assert.False(t, strings.HasPrefix(call, "pins:"), "nothing is rendered after a bad reference")
	}
	assert.Equal(t, domain.RunStatusInvalidReference, f.runs.Runs()[0].Status)
}

func TestReportService_FetchFailureCarriesLabel(t *testing.T) {
	f := newReportFixture()
	f.platform.ListErr = errors.New("discord unavailable")

	report, err := f.service().Generate(context.Background(), domain.ReportRequest{
		GuildID: testGuild,
		Args:    []string{"6/1", "general", "engineering"},
	})

	assert.Nil(t, report)
	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "Jun 1st - Jun 15th", fetchErr.RangeLabel)
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Equal(t, domain.RunStatusFetchFailed, f.runs.Runs()[0].Status)
	assert.Equal(t, []string{"report:" + testGuild}, f.lock.Released, "lock released after failure")
}

func TestReportService_NamespaceFailure(t *testing.T) {
	f := newReportFixture()
	f.platform.NamespaceErr = errors.New("guild unavailable")

	_, err := f.service().Generate(context.Background(), domain.ReportRequest{GuildID: testGuild, Args: []string{"general"}})

	assert.ErrorIs(t, err, domain.ErrFetchFailed)
}

func TestReportService_Busy(t *testing.T) {
	f := newReportFixture()
	f.lock.SetLockHeld("report:"+testGuild, time.Minute)

	_, err := f.service().Generate(context.Background(), domain.ReportRequest{GuildID: testGuild})

	assert.ErrorIs(t, err, domain.ErrReportInProgress)
	assert.Empty(t, f.platform.Calls)
	assert.Empty(t, f.lock.Released)
	assert.Equal(t, domain.RunStatusBusy, f.runs.Runs()[0].Status)
}

func TestReportService_LockBackendError(t *testing.T) {
	f := newReportFixture()
	f.lock.AcquireFn = func(name string, ttl time.Duration) (bool, error) {
		return false, errors.New("connection refused")
	}

	_, err := f.service().Generate(context.Background(), domain.ReportRequest{GuildID: testGuild})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	assert.Empty(t, f.platform.Calls)
	assert.Equal(t, domain.RunStatusUnavailable, f.runs.Runs()[0].Status)
}

func TestReportService_RequiresGuild(t *testing.T) {
	f := newReportFixture()

	_, err := f.service().Generate(context.Background(), domain.ReportRequest{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReportService_WithoutOptionalBackends(t *testing.T) {
	f := newReportFixture()
	svc := NewReportService(ReportServiceConfig{Platform: f.platform, DateParser: f.parser, Filename: "pins.md"})

	report, err := svc.Generate(context.Background(), domain.ReportRequest{GuildID: testGuild, Args: []string{"general"}})
	require.NoError(t, err)
	assert.Equal(t, "pins.md", report.Filename)

	runs, err := svc.RecentRuns(context.Background(), testGuild, 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestReportService_Publish(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *reportFixture)
		args  []string
		check func(t *testing.T, sink *mocks.MockDeliverySink)
	}{
		{
			name: "delivers report",
			args: []string{"general"},
			check: func(t *testing.T, sink *mocks.MockDeliverySink) {
				require.Len(t, sink.Reports, 1)
				assert.Equal(t, "summary_doc.md", sink.Reports[0].Filename)
			},
		},
		{
			name: "rejects reference",
			args: []string{"6/1", "missing"},
			check: func(t *testing.T, sink *mocks.MockDeliverySink) {
				assert.Equal(t, []string{"missing"}, sink.Rejected)
				assert.Empty(t, sink.Reports)
			},
		},
		{
			name:  "reports failure with range label",
			setup: func(f *reportFixture) { f.platform.PinErrs["12"] = errors.New("missing access") },
			args:  []string{"general"},
			check: func(t *testing.T, sink *mocks.MockDeliverySink) {
				assert.Equal(t, []string{"Up until Jun 15th"}, sink.Failures)
				assert.Empty(t, sink.Reports)
			},
		},
		{
			name: "reports unavailable lock backend",
			setup: func(f *reportFixture) {
				f.lock.AcquireFn = func(name string, ttl time.Duration) (bool, error) {
					return false, errors.New("connection refused")
				}
			},
			args: []string{"general"},
			check: func(t *testing.T, sink *mocks.MockDeliverySink) {
				assert.Equal(t, 1, sink.Down)
				assert.Empty(t, sink.Reports)
				assert.Empty(t, sink.Failures)
			},
		},
		{
			name:  "reports busy",
			setup: func(f *reportFixture) { f.lock.SetLockHeld("report:"+testGuild, time.Minute) },
			check: func(t *testing.T, sink *mocks.MockDeliverySink) {
				assert.Equal(t, 1, sink.Busy)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReportFixture()
			if tt.setup != nil {
				tt.setup(f)
			}

			err := f.service().Publish(context.Background(), domain.ReportRequest{GuildID: testGuild, Args: tt.args}, f.sink)

			require.NoError(t, err)
			tt.check(t, f.sink)
		})
	}
}

func TestReportService_PublishReturnsUnexpectedErrors(t *testing.T) {
	f := newReportFixture()

	err := f.service().Publish(context.Background(), domain.ReportRequest{}, f.sink)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.sink.Reports)
	assert.Empty(t, f.sink.Failures)
	assert.Zero(t, f.sink.Down)
}

func TestReportService_RecentRuns(t *testing.T) {
	f := newReportFixture()
	svc := f.service()

	_, _ = svc.Generate(context.Background(), domain.ReportRequest{GuildID: testGuild, Args: []string{"general"}})
	_, _ = svc.Generate(context.Background(), domain.ReportRequest{GuildID: testGuild, Args: []string{"nope"}})

	runs, err := svc.RecentRuns(context.Background(), testGuild, 0)

	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, domain.RunStatusInvalidReference, runs[0].Status, "newest first")
	assert.Equal(t, domain.RunStatusSucceeded, runs[1].Status)
}
