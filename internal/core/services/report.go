package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
	"github.com/custodia-labs/pindoc/internal/core/ports/driving"
)

// Ensure reportService implements ReportService
var _ driving.ReportService = (*reportService)(nil)

const (
	// DefaultReportFilename is the attachment name of delivered reports
	DefaultReportFilename = "summary_doc.md"

	// DefaultLockTTL bounds how long a crashed instance can block a guild
	DefaultLockTTL = 2 * time.Minute

	reportLockPrefix = "report:"
)

// ReportServiceConfig holds dependencies for the report service
type ReportServiceConfig struct {
	Platform   driven.Platform
	DateParser driven.DateParser
	Lock       driven.DistributedLock // optional
	RunStore   driven.RunStore        // optional
	Logger     *slog.Logger
	Clock      func() time.Time

	Filename             string
	EmptySectionTemplate string
	LockTTL              time.Duration
}

// reportService resolves arguments, builds the document tree and renders it
type reportService struct {
	platform   driven.Platform
	dateParser driven.DateParser
	lock       driven.DistributedLock
	runStore   driven.RunStore
	resolver   *ReferenceResolver
	logger     *slog.Logger
	clock      func() time.Time

	filename      string
	emptyTemplate string
	lockTTL       time.Duration
}

// NewReportService creates a new ReportService
func NewReportService(cfg ReportServiceConfig) driving.ReportService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	filename := cfg.Filename
	if filename == "" {
		filename = DefaultReportFilename
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}

	return &reportService{
		platform:      cfg.Platform,
		dateParser:    cfg.DateParser,
		lock:          cfg.Lock,
		runStore:      cfg.RunStore,
		resolver:      NewReferenceResolver(cfg.Platform, logger),
		logger:        logger,
		clock:         clock,
		filename:      filename,
		emptyTemplate: cfg.EmptySectionTemplate,
		lockTTL:       lockTTL,
	}
}

// Generate builds the report for req, holding the guild's report lock while it runs
func (s *reportService) Generate(ctx context.Context, req domain.ReportRequest) (*domain.Report, error) {
	if req.GuildID == "" {
		return nil, fmt.Errorf("%w: guild ID is required", domain.ErrInvalidInput)
	}

	logger := s.logger.With("guild_id", req.GuildID, "requested_by", req.RequestedBy)
	run := &domain.ReportRun{
		ID:          uuid.NewString(),
		GuildID:     req.GuildID,
		RequestedBy: req.RequestedBy,
		Args:        req.Args,
		StartedAt:   s.clock(),
	}
	startTime := time.Now()

	report, sections, err := s.generateLocked(ctx, req, run)

	run.Duration = time.Since(startTime)
	run.Sections = sections
	run.Status = domain.RunStatusFor(err)
	if err != nil {
		run.Error = err.Error()
		logger.Warn("report generation failed", "status", run.Status, "duration", run.Duration, "error", err)
	} else {
		logger.Info("report generated", "sections", sections, "bytes", len(report.Markdown), "duration", run.Duration)
	}
	s.recordRun(ctx, run, logger)

	return report, err
}

func (s *reportService) generateLocked(ctx context.Context, req domain.ReportRequest, run *domain.ReportRun) (*domain.Report, int, error) {
	if s.lock != nil {
		lockName := reportLockPrefix + req.GuildID
		acquired, err := s.lock.Acquire(ctx, lockName, s.lockTTL)
		if err != nil {
			return nil, 0, fmt.Errorf("acquire report lock: %w: %w", domain.ErrServiceUnavailable, err)
		}
		if !acquired {
			return nil, 0, fmt.Errorf("guild %s: %w", req.GuildID, domain.ErrReportInProgress)
		}
		defer func() {
			// Release even if the request context was cancelled mid-render
			if err := s.lock.Release(context.WithoutCancel(ctx), lockName); err != nil {
				s.logger.Warn("failed to release report lock", "lock", lockName, "error", err)
			}
		}()
	}

	return s.generate(ctx, req, run)
}

func (s *reportService) generate(ctx context.Context, req domain.ReportRequest, run *domain.ReportRun) (*domain.Report, int, error) {
	now := s.clock()
	interval, refs := ResolveDateRange(s.dateParser, req.Args, now)
	label := interval.Label(now)
	run.RangeLabel = label

	ns, err := s.platform.Namespace(ctx, req.GuildID)
	if err != nil {
		return nil, 0, &domain.FetchError{RangeLabel: label, Err: fmt.Errorf("guild channels: %w", err)}
	}

	root := NewRoot(interval)
	for _, token := range refs {
		c, err := s.resolver.Resolve(ctx, ns, token)
		if err != nil {
			return nil, len(root.Sections), err
		}
		root.Add(c)
	}

	rc := &RenderContext{
		Source:        s.platform,
		Today:         now,
		EmptyTemplate: s.emptyTemplate,
	}
	markdown, err := root.Render(ctx, rc)
	if err != nil {
		return nil, len(root.Sections), &domain.FetchError{RangeLabel: label, Err: err}
	}

	return &domain.Report{
		GuildID:     req.GuildID,
		Interval:    interval,
		RangeLabel:  label,
		Markdown:    markdown,
		Filename:    s.filename,
		GeneratedAt: now,
	}, len(root.Sections), nil
}

func (s *reportService) recordRun(ctx context.Context, run *domain.ReportRun, logger *slog.Logger) {
	if s.runStore == nil {
		return
	}
	if err := s.runStore.Save(context.WithoutCancel(ctx), run); err != nil {
		logger.Error("failed to record report run", "run_id", run.ID, "error", err)
	}
}

// Publish generates the report and routes the outcome to sink
func (s *reportService) Publish(ctx context.Context, req domain.ReportRequest, sink driven.DeliverySink) error {
	report, err := s.Generate(ctx, req)

	var refErr *domain.ReferenceError
	var fetchErr *domain.FetchError
	switch {
	case err == nil:
		return sink.Deliver(ctx, report)
	case errors.As(err, &refErr):
		return sink.RejectReference(ctx, refErr.Token)
	case errors.As(err, &fetchErr):
		return sink.ReportFailure(ctx, fetchErr.RangeLabel)
	case errors.Is(err, domain.ErrReportInProgress):
		return sink.ReportBusy(ctx)
	case errors.Is(err, domain.ErrServiceUnavailable):
		return sink.ReportUnavailable(ctx)
	default:
		return err
	}
}

// RecentRuns lists the latest generation attempts for a guild
func (s *reportService) RecentRuns(ctx context.Context, guildID string, limit int) ([]*domain.ReportRun, error) {
	if s.runStore == nil {
		return []*domain.ReportRun{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.runStore.ListByGuild(ctx, guildID, limit)
}
