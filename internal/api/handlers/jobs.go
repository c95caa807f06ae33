package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/warroom/internal/scheduler"
)

// JobMonitor exposes scheduler run state.
// *scheduler.Scheduler implements it.
type JobMonitor interface {
	GetAllJobs() []string
	GetJobStats() map[string]scheduler.JobStats
	GetJobHistory(jobName string) (scheduler.JobHistory, error)
}

// JobsHandler reports background job health
type JobsHandler struct {
	monitor JobMonitor
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(monitor JobMonitor) *JobsHandler {
	return &JobsHandler{monitor: monitor}
}

// JobDetail is the history view of one job
type JobDetail struct {
	Stats       scheduler.JobStats    `json:"stats"`
	Latest      []scheduler.JobResult `json:"latest"`
	Failures    []scheduler.JobResult `json:"failures"`
	SuccessRate float64               `json:"success_rate"`
}

const defaultHistoryLimit = 20

// ListJobs returns stats for every job, ordered by name
// GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	stats := h.monitor.GetJobStats()

	out := make([]scheduler.JobStats, 0, len(stats))
	for _, name := range h.monitor.GetAllJobs() {
		if s, ok := stats[name]; ok {
			out = append(out, s)
		}
	}

	respondJSON(w, http.StatusOK, out)
}

// GetJob returns the recent runs of one job
// GET /api/jobs/{name}?limit=20
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	history, err := h.monitor.GetJobHistory(name)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	respondJSON(w, http.StatusOK, JobDetail{
		Stats:       h.monitor.GetJobStats()[name],
		Latest:      history.Latest(limit),
		Failures:    history.Failures(),
		SuccessRate: history.SuccessRate(),
	})
}
