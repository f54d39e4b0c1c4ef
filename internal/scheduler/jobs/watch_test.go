package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/esgproxy/backend/internal/contracts"
	"github.com/wonny/esgproxy/backend/internal/marketdata"
	"github.com/wonny/esgproxy/backend/internal/pipeline"
	"github.com/wonny/esgproxy/backend/internal/scheduler"
	"github.com/wonny/esgproxy/backend/internal/scoring"
	"github.com/wonny/esgproxy/backend/pkg/logger"
)

func newScorer() *pipeline.MarketPipeline {
	return pipeline.NewMarketPipeline(scoring.NewRegistry(), marketdata.NewStatic(), pipeline.MarketConfig{}, nil, logger.Nop()).
		WithClock(func() time.Time { return time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC) })
}

func TestWatchJob_Run(t *testing.T) {
	var scored []string
	job := NewWatchJob(newScorer(), []string{"FLAT", "UNKNOWN", "UPTREND"}, scoring.SchemeGrowth, "@daily", logger.Nop()).
		OnResult(func(r *contracts.ScoreResult) { scored = append(scored, r.Ticker) })

	require.NoError(t, job.Run(context.Background()), "partial failure is not a job failure")
	assert.Equal(t, []string{"FLAT", "UPTREND"}, scored)
	assert.Equal(t, scheduler.RunReport{Items: 3, Failed: 1}, job.LastRun())
	assert.Equal(t, WatchJobName, job.Name())
	assert.Equal(t, "@daily", job.Schedule())
}

func TestWatchJob_AllFail(t *testing.T) {
	job := NewWatchJob(newScorer(), []string{"UNKNOWN", "SINGLE"}, "", "@daily", logger.Nop())
	err := job.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
	assert.Equal(t, scheduler.RunReport{Items: 2, Failed: 2}, job.LastRun())
}

func TestWatchJob_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job := NewWatchJob(newScorer(), []string{"FLAT"}, "", "@daily", logger.Nop())
	assert.ErrorIs(t, job.Run(ctx), context.Canceled)
	assert.Equal(t, scheduler.RunReport{}, job.LastRun())
}

func TestWatchJob_Empty(t *testing.T) {
	assert.NoError(t, NewWatchJob(newScorer(), nil, "", "@daily", logger.Nop()).Run(context.Background()))
}

func TestWatchJob_Scheduled(t *testing.T) {
	s := scheduler.New(logger.Nop())
	require.NoError(t, s.AddJob(NewWatchJob(newScorer(), []string{"FLAT"}, "", "0 18 * * 1-5", logger.Nop())))

	res, err := s.RunJob(context.Background(), WatchJobName)
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.NotNil(t, res.Report)
	assert.Equal(t, 1, res.Report.Items)
}
