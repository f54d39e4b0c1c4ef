package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wonny/esgproxy/backend/internal/contracts"
	"github.com/wonny/esgproxy/backend/internal/pipeline"
	"github.com/wonny/esgproxy/backend/internal/scheduler"
	"github.com/wonny/esgproxy/backend/pkg/logger"
)

// WatchJobName is the scheduler name of the watchlist job
const WatchJobName = "watchlist_rescore"

// MarketScorer scores a ticker
type MarketScorer interface {
	Score(ctx context.Context, req pipeline.MarketRequest) (*contracts.ScoreResult, error)
}

// WatchJob rescores a ticker watchlist and logs each result
// Results are not persisted.
type WatchJob struct {
	scorer   MarketScorer
	tickers  []string
	scheme   string
	schedule string
	logger   *logger.Logger
	onResult func(*contracts.ScoreResult)

	mu   sync.Mutex
	last scheduler.RunReport
}

// NewWatchJob creates the watchlist job; an empty scheme uses the pipeline default
func NewWatchJob(scorer MarketScorer, tickers []string, scheme, schedule string, log *logger.Logger) *WatchJob {
	return &WatchJob{
		scorer:   scorer,
		tickers:  append([]string(nil), tickers...),
		scheme:   scheme,
		schedule: schedule,
		logger:   log.WithComponent("watch"),
	}
}

// OnResult registers a callback invoked for every successful score
func (j *WatchJob) OnResult(fn func(*contracts.ScoreResult)) *WatchJob {
	j.onResult = fn
	return j
}

// LastRun reports tickers attempted and failed in the most recent run
func (j *WatchJob) LastRun() scheduler.RunReport {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last
}

// Name returns the job name
func (j *WatchJob) Name() string {
	return WatchJobName
}

// Schedule returns the cron schedule
func (j *WatchJob) Schedule() string {
	return j.schedule
}

// Run scores every ticker sequentially
// Fails only when no ticker could be scored.
func (j *WatchJob) Run(ctx context.Context) error {
	report := scheduler.RunReport{}
	defer func() {
		j.mu.Lock()
		j.last = report
		j.mu.Unlock()
	}()

	if len(j.tickers) == 0 {
		j.logger.Warn("Watchlist is empty")
		return nil
	}

	var errs []error
	for _, ticker := range j.tickers {
		if err := ctx.Err(); err != nil {
			return err
		}

		report.Items++
		res, err := j.scorer.Score(ctx, pipeline.MarketRequest{Ticker: ticker, Scheme: j.scheme})
		if err != nil {
			report.Failed++
			j.logger.WithError(err).WithFields(map[string]interface{}{
				"ticker": ticker,
				"reason": pipeline.Reason(err),
			}).Warn("Watchlist ticker not scored")
			errs = append(errs, fmt.Errorf("%s: %w", ticker, err))
			continue
		}

		j.logger.WithFields(map[string]interface{}{
			"ticker": res.Ticker,
			"scheme": res.Scheme,
			"score":  res.Score,
			"risk":   res.Classification.Risk,
			"id":     res.ID,
		}).Info("Watchlist ticker scored")
		if j.onResult != nil {
			j.onResult(res)
		}
	}

	if len(errs) == len(j.tickers) {
		return fmt.Errorf("no watchlist ticker scored: %w", errors.Join(errs...))
	}
	return nil
}
