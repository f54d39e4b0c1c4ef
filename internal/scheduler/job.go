package scheduler

import (
	"context"
	"time"
)

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string
	Run(ctx context.Context) error

	// Schedule returns a standard cron expression, e.g. "0 18 * * 1-5" or "@daily"
	Schedule() string
}

// Reporter is implemented by jobs that process several items per run
type Reporter interface {
	LastRun() RunReport
}

// RunReport counts items handled by one run
type RunReport struct {
	Items  int `json:"items"`
	Failed int `json:"failed"`
}

// maxHistory bounds the results kept per job
const maxHistory = 100

// JobResult is one execution, including retries
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Report    *RunReport    `json:"report,omitempty"`
}

// JobHistory is a bounded log of results, oldest first
type JobHistory struct {
	results []JobResult
}

func (h *JobHistory) add(result JobResult) {
	h.results = append(h.results, result)
	if len(h.results) > maxHistory {
		h.results = h.results[len(h.results)-maxHistory:]
	}
}

func (h *JobHistory) clone() *JobHistory {
	return &JobHistory{results: append([]JobResult(nil), h.results...)}
}

// Len returns the number of recorded runs
func (h *JobHistory) Len() int {
	return len(h.results)
}

// Latest returns up to n most recent results, oldest first
func (h *JobHistory) Latest(n int) []JobResult {
	if n > len(h.results) {
		n = len(h.results)
	}
	if n <= 0 {
		return []JobResult{}
	}
	return append([]JobResult(nil), h.results[len(h.results)-n:]...)
}

// Failures counts failed runs
func (h *JobHistory) Failures() int {
	n := 0
	for _, r := range h.results {
		if !r.Success {
			n++
		}
	}
	return n
}

// SuccessRate returns succeeded / total, 0 with no runs
func (h *JobHistory) SuccessRate() float64 {
	if len(h.results) == 0 {
		return 0
	}
	return float64(len(h.results)-h.Failures()) / float64(len(h.results))
}
