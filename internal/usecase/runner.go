package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"HazardScanner/internal/domain"
	"HazardScanner/internal/ports"
)

// Run initiators recorded in processing logs.
const (
	ProcessedByCron   = "cron"
	ProcessedByManual = "manual"
)

// RunnerDeps wires the processor into scheduled and on-demand execution.
type RunnerDeps struct {
	Processor  *Processor
	Logs       ports.ProcessingLogStore
	Thresholds *Thresholds
	Driver     ports.Scheduler
	Logger     *slog.Logger

	// MaxAttempts bounds the retry policy around one scheduled run.
	MaxAttempts int
	// BaseBackoff doubles between attempts.
	BaseBackoff time.Duration
	// RunBudget is the wall-clock deadline for one run.
	RunBudget time.Duration
}

// Runner executes pipeline runs under a wall-clock budget with an explicit
// retry policy, and records per-feed processing logs. Retry wraps the
// whole run invocation; per-item error isolation stays inside the
// processor.
type Runner struct {
	processor  *Processor
	logs       ports.ProcessingLogStore
	thresholds *Thresholds
	driver     ports.Scheduler
	logger     *slog.Logger

	maxAttempts int
	baseBackoff time.Duration
	runBudget   time.Duration
	sleep       func(ctx context.Context, d time.Duration)
}

// NewRunner builds a runner; attempts default to 3 with a 1-minute base
// backoff and a 50-minute budget.
func NewRunner(deps RunnerDeps) *Runner {
	maxAttempts := deps.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	baseBackoff := deps.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = time.Minute
	}
	runBudget := deps.RunBudget
	if runBudget <= 0 {
		runBudget = 50 * time.Minute
	}
	return &Runner{
		processor:   deps.Processor,
		logs:        deps.Logs,
		thresholds:  deps.Thresholds,
		driver:      deps.Driver,
		logger:      deps.Logger,
		maxAttempts: maxAttempts,
		baseBackoff: baseBackoff,
		runBudget:   runBudget,
		sleep:       sleepFor,
	}
}

// Start registers the scheduled job with the driver.
func (r *Runner) Start(ctx context.Context) error {
	if r.driver == nil || r.processor == nil {
		return nil
	}

	job := func(time.Time) {
		r.runWithRetry(ctx)
	}
	return r.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (r *Runner) Stop(ctx context.Context) error {
	if r.driver == nil {
		return nil
	}
	return r.driver.Stop(ctx)
}

// RunOnce executes one full pipeline run under the wall-clock budget:
// refresh thresholds, process every feed, write processing logs. Each
// persisted hazard is final once written, so a budget overrun simply
// yields a partial result set.
func (r *Runner) RunOnce(ctx context.Context) ([]domain.FeedRunResult, error) {
	if r.processor == nil {
		return nil, fmt.Errorf("processor is not configured")
	}

	runCtx, cancel := context.WithTimeout(ctx, r.runBudget)
	defer cancel()

	if r.thresholds != nil {
		r.thresholds.Refresh()
	}

	results := r.processor.ProcessAllFeeds(runCtx)
	r.writeLogs(ctx, results, ProcessedByCron)

	if err := runCtx.Err(); err != nil {
		return results, fmt.Errorf("run exceeded budget: %w", err)
	}
	return results, nil
}

// ProcessFeedOnce runs a single feed on demand (manual trigger path).
func (r *Runner) ProcessFeedOnce(ctx context.Context, feedURL string) domain.FeedRunResult {
	runCtx, cancel := context.WithTimeout(ctx, r.runBudget)
	defer cancel()

	result := r.processor.ProcessFeed(runCtx, feedURL)
	r.writeLogs(ctx, []domain.FeedRunResult{result}, ProcessedByManual)
	return result
}

// runWithRetry applies the retry policy around one scheduled run:
// maxAttempts tries, backoff doubling from baseBackoff between them.
func (r *Runner) runWithRetry(ctx context.Context) {
	backoff := r.baseBackoff
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		_, err := r.RunOnce(ctx)
		if err == nil {
			return
		}

		r.logError("scheduled run failed", "attempt", attempt, "error", err)
		if attempt == r.maxAttempts || ctx.Err() != nil {
			return
		}

		r.sleep(ctx, backoff)
		backoff *= 2
	}
}

func (r *Runner) writeLogs(ctx context.Context, results []domain.FeedRunResult, processedBy string) {
	if r.logs == nil {
		return
	}

	for _, result := range results {
		errorsCount := 0
		if result.Status == domain.RunStatusError {
			errorsCount = 1
		}

		hazardIDs := make([]string, 0, len(result.HazardsSaved))
		for _, saved := range result.HazardsSaved {
			hazardIDs = append(hazardIDs, saved.ID)
		}

		entry := domain.ProcessingLogEntry{
			FeedURL:            result.FeedURL,
			Status:             result.Status,
			ItemsProcessed:     result.ItemsProcessed,
			ItemsAdded:         result.ItemsAdded,
			DuplicatesDetected: result.DuplicatesDetected,
			ErrorsCount:        errorsCount,
			ProcessingTime:     result.ProcessingTime,
			HazardIDs:          hazardIDs,
			ErrorMessage:       result.ErrorMessage,
			ProcessedBy:        processedBy,
		}
		if err := r.logs.SaveLog(ctx, entry); err != nil {
			r.logError("writing processing log failed", "feed_url", result.FeedURL, "error", err)
		}
	}
}

func sleepFor(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (r *Runner) logError(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Error(msg, args...)
	}
}
