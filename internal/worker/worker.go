package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
	"github.com/custodia-labs/pindoc/internal/core/ports/driving"
)

// SinkFactory returns where the outcome of a job is delivered
type SinkFactory func(job *domain.ReportJob) driven.DeliverySink

// Worker processes report jobs from the job queue.
type Worker struct {
	queue   driven.JobQueue
	reports driving.ReportService
	sinks   SinkFactory
	logger  *slog.Logger

	// Configuration
	concurrency    int
	dequeueTimeout time.Duration
	jobTimeout     time.Duration

	// Internal state
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WorkerConfig holds configuration for the worker.
type WorkerConfig struct {
	Queue          driven.JobQueue
	Reports        driving.ReportService
	Sinks          SinkFactory
	Logger         *slog.Logger
	Concurrency    int           // Number of concurrent job processors
	DequeueTimeout time.Duration // How long to wait for a job before checking for stop
	JobTimeout     time.Duration // Upper bound on one report, delivery included
}

// NewWorker creates a new report worker.
func NewWorker(cfg WorkerConfig) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	dequeueTimeout := cfg.DequeueTimeout
	if dequeueTimeout <= 0 {
		dequeueTimeout = 5 * time.Second
	}

	jobTimeout := cfg.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = 2 * time.Minute
	}

	return &Worker{
		queue:          cfg.Queue,
		reports:        cfg.Reports,
		sinks:          cfg.Sinks,
		logger:         logger.With("component", "worker"),
		concurrency:    concurrency,
		dequeueTimeout: dequeueTimeout,
		jobTimeout:     jobTimeout,
	}
}

// Start begins the worker loop.
// It runs until Stop is called or context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting",
		"concurrency", w.concurrency,
		"dequeue_timeout", w.dequeueTimeout,
	)

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.processLoop(ctx, workerID)
		}(i)
	}

	go func() {
		wg.Wait()
		close(w.doneCh)
	}()

	return nil
}

// Stop gracefully stops the worker, letting in-flight jobs finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("worker stopped")
}

func (w *Worker) processLoop(ctx context.Context, workerID int) {
	logger := w.logger.With("worker_id", workerID)
	logger.Debug("worker goroutine started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("worker context cancelled")
			return
		case <-w.stopCh:
			logger.Debug("worker stop signal received")
			return
		default:
		}

		job, err := w.queue.DequeueWithTimeout(ctx, w.dequeueTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logger.Error("failed to dequeue job", "error", err)
			time.Sleep(time.Second) // Back off on error
			continue
		}

		if job == nil {
			continue
		}

		w.processJob(ctx, job, logger)
	}
}

// processJob publishes one report. A panic fails only this job.
func (w *Worker) processJob(ctx context.Context, job *domain.ReportJob, logger *slog.Logger) {
	logger = logger.With("job_id", job.ID, "guild_id", job.Request.GuildID)
	logger.Info("processing report job", "queued_for", time.Since(job.EnqueuedAt))

	ctx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	startTime := time.Now()
	err := w.publish(ctx, job)
	duration := time.Since(startTime)

	if err != nil {
		logger.Error("report job failed", "duration", duration, "error", err)
		return
	}
	logger.Info("report job completed", "duration", duration)
}

func (w *Worker) publish(ctx context.Context, job *domain.ReportJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in report job: %v", r)
		}
	}()
	return w.reports.Publish(ctx, job.Request, w.sinks(job))
}

// Health is the status of the worker.
type Health struct {
	Running    bool `json:"running"`
	QueueDepth int  `json:"queue_depth"`
}

// ErrNotRunning is returned by Ping when no processor goroutine is alive
var ErrNotRunning = errors.New("worker not running")

// Health returns the health status of the worker.
// Processors that exited on context cancellation count as stopped.
func (w *Worker) Health() Health {
	w.mu.RLock()
	running := w.running
	done := w.doneCh
	w.mu.RUnlock()

	if running && done != nil {
		select {
		case <-done:
			running = false
		default:
		}
	}

	return Health{
		Running:    running,
		QueueDepth: w.queue.Len(),
	}
}

// Ping reports ErrNotRunning unless the worker is processing jobs
func (w *Worker) Ping(ctx context.Context) error {
	if !w.Health().Running {
		return ErrNotRunning
	}
	return nil
}
