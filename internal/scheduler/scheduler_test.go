package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/esgproxy/backend/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	fails    int // number of initial failures
	runs     int
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(context.Context) error {
	j.runs++
	if j.runs <= j.fails {
		return errors.New("transient")
	}
	return nil
}

func TestAddJob(t *testing.T) {
	s := New(logger.Nop())
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "0 18 * * 1-5"}))
	require.NoError(t, s.AddJob(&countingJob{name: "b", schedule: "@daily"}))

	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "@hourly"}), "duplicate name")
	assert.Error(t, s.AddJob(&countingJob{name: "c", schedule: "not a cron"}))
	assert.Equal(t, []string{"a", "b"}, s.Jobs())
}

func TestRunJob(t *testing.T) {
	s := New(logger.Nop())
	job := &countingJob{name: "watch", schedule: "@daily", fails: 1}
	require.NoError(t, s.AddJob(job))

	res, err := s.RunJob(context.Background(), "watch")
	require.NoError(t, err)
	assert.False(t, res.Success, "no retries by default")
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, "transient", res.Error)
	assert.Nil(t, res.Report)

	res, err = s.RunJob(context.Background(), "watch")
	require.NoError(t, err)
	assert.True(t, res.Success)

	stats := s.Stats()["watch"]
	assert.Equal(t, 2, stats.TotalRuns)
	assert.Equal(t, 1, stats.FailureCount)
	assert.InDelta(t, 0.5, stats.SuccessRate, 1e-12)
	require.NotNil(t, stats.LastRun)
	require.NotNil(t, stats.LastSuccess)
	require.NotNil(t, stats.LastFailure)
	assert.False(t, stats.LastFailure.After(*stats.LastSuccess))

	h, err := s.History("watch")
	require.NoError(t, err)
	assert.Equal(t, 2, h.Len())

	_, err = s.History("missing")
	assert.Error(t, err)

	_, err = s.RunJob(context.Background(), "missing")
	assert.Error(t, err)
}

func TestRunJob_Retry(t *testing.T) {
	s := New(logger.Nop()).WithRetry(2, time.Millisecond)
	job := &countingJob{name: "flaky", schedule: "@daily", fails: 2}
	require.NoError(t, s.AddJob(job))

	res, err := s.RunJob(context.Background(), "flaky")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, job.runs)
}

func TestRunJob_RetryCanceled(t *testing.T) {
	s := New(logger.Nop()).WithRetry(5, time.Hour)
	job := &countingJob{name: "flaky", schedule: "@daily", fails: 10}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.RunJob(ctx, "flaky")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 1, job.runs, "canceled context stops the retry wait")
}

type reportingJob struct {
	countingJob
}

func (j *reportingJob) LastRun() RunReport { return RunReport{Items: 3, Failed: 1} }

func TestRunJob_Report(t *testing.T) {
	s := New(logger.Nop())
	require.NoError(t, s.AddJob(&reportingJob{countingJob{name: "batch", schedule: "@daily"}}))

	res, err := s.RunJob(context.Background(), "batch")
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	assert.Equal(t, RunReport{Items: 3, Failed: 1}, *res.Report)
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.SuccessRate())
	assert.Empty(t, h.Latest(5))

	for i := 0; i < maxHistory+10; i++ {
		h.add(JobResult{Attempts: i, Success: i%2 == 0})
	}
	assert.Equal(t, maxHistory, h.Len())
	assert.Equal(t, maxHistory/2, h.Failures())
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-12)

	latest := h.Latest(3)
	require.Len(t, latest, 3)
	assert.Equal(t, maxHistory+9, latest[2].Attempts, "newest last")

	snap := h.clone()
	h.add(JobResult{})
	assert.Equal(t, maxHistory, snap.Len(), "snapshot is detached")
}

func TestKVFields(t *testing.T) {
	assert.Equal(t, map[string]interface{}{"entry": 1, "now": "x"}, kvFields([]interface{}{"entry", 1, "now", "x", "dangling"}))
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 18 * * 1-5"))
	assert.NoError(t, ValidateSchedule("@hourly"))
	assert.Error(t, ValidateSchedule("0 0 18 * * 1-5"), "seconds field not accepted")
}

func TestStartStop(t *testing.T) {
	s := New(logger.Nop())
	s.Start(context.Background())
	s.Stop()
}
