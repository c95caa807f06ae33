package scheduler

import (
	"context"
	"time"
)

// historyLimit bounds the results kept per job
const historyLimit = 100

// Job is a unit of scheduled work (portfolio refresh, cache sweep)
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Run executes one attempt; ctx carries the per-attempt timeout
	Run(ctx context.Context) error

	// Schedule is a five-field cron expression or a descriptor
	// such as "@every 2m"
	Schedule() string
}

// JobResult is the outcome of one run, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory is the bounded run log of one job, oldest first
type JobHistory struct {
	Results []JobResult `json:"results"`
}

func (h *JobHistory) add(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > historyLimit {
		h.Results = h.Results[len(h.Results)-historyLimit:]
	}
}

// snapshot copies the history so readers never share the live slice
func (h *JobHistory) snapshot() JobHistory {
	out := make([]JobResult, len(h.Results))
	copy(out, h.Results)
	return JobHistory{Results: out}
}

// Latest returns up to n most recent results, newest last
func (h JobHistory) Latest(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	if n <= 0 {
		return []JobResult{}
	}
	return h.Results[len(h.Results)-n:]
}

// Failures returns the failed runs
func (h JobHistory) Failures() []JobResult {
	failed := make([]JobResult, 0)
	for _, r := range h.Results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

// SuccessRate returns successful runs over all runs (0 when never run)
func (h JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}

	ok := 0
	for _, r := range h.Results {
		if r.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(h.Results))
}
