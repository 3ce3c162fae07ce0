package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/peopleops/leaveledger/internal/domain"
	"github.com/peopleops/leaveledger/internal/infrastructure/metrics"
	"github.com/peopleops/leaveledger/internal/usecase"
)

// Dequeuer pulls recompute jobs off the queue, blocking up to timeout.
// A (nil, nil) result means the wait timed out with nothing to do.
type Dequeuer interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*domain.RecomputeJob, error)
	Len(ctx context.Context) (int64, error)
}

// Runner executes one recompute job. Implemented by the cascade use case.
type Runner interface {
	Run(ctx context.Context, job domain.RecomputeJob) error
}

// Worker consumes recompute jobs and settles ledger partitions. Several
// consumers run in parallel; the cascade itself is idempotent, so duplicate
// delivery is harmless.
type Worker struct {
	queue       Dequeuer
	runner      Runner
	retrier     usecase.Retrier
	logger      *slog.Logger
	metrics     *metrics.Metrics
	concurrency int
	pollTimeout time.Duration
}

// Config for Worker.
type Config struct {
	Queue       Dequeuer
	Runner      Runner
	Retrier     usecase.Retrier
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Concurrency int
	PollTimeout time.Duration
}

// New creates a new Worker.
func New(cfg Config) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Worker{
		queue:       cfg.Queue,
		runner:      cfg.Runner,
		retrier:     cfg.Retrier,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		concurrency: cfg.Concurrency,
		pollTimeout: cfg.PollTimeout,
	}
}

// Start runs the consumer loops until the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("recompute worker started",
		slog.Int("concurrency", w.concurrency),
		slog.Duration("poll_timeout", w.pollTimeout))

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.consume(ctx)
		}()
	}
	wg.Wait()

	w.logger.Info("recompute worker shutting down")
	return ctx.Err()
}

func (w *Worker) consume(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		job, err := w.queue.Dequeue(ctx, w.pollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			w.logger.Error("failed to dequeue job", slog.String("error", err.Error()))
			continue
		}
		if w.metrics != nil {
			if depth, err := w.queue.Len(ctx); err == nil {
				w.metrics.QueueDepth.Set(float64(depth))
			}
		}
		if job == nil {
			continue
		}

		w.process(ctx, *job)
	}
}

func (w *Worker) process(ctx context.Context, job domain.RecomputeJob) {
	run := func() error {
		return w.runner.Run(ctx, job)
	}

	start := time.Now()
	var err error
	if w.retrier != nil {
		err = w.retrier.Retry(ctx, run)
	} else {
		err = run()
	}

	if w.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		w.metrics.JobsProcessed.WithLabelValues(status).Inc()
		w.metrics.JobDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		w.logger.Error("recompute job failed",
			slog.String("entry_id", job.EntryID),
			slog.String("employee_id", job.EmployeeID),
			slog.String("category_id", job.CategoryID),
			slog.String("error", err.Error()))
		return
	}

	w.logger.Debug("recompute job done",
		slog.String("entry_id", job.EntryID),
		slog.String("employee_id", job.EmployeeID),
		slog.String("category_id", job.CategoryID))
}
