package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/warroom/internal/scheduler"
	"github.com/wonny/warroom/pkg/logger"
)

type stubJob struct {
	name string
	err  error
}

func (j stubJob) Name() string                  { return j.name }
func (j stubJob) Schedule() string              { return "@every 1h" }
func (j stubJob) Run(ctx context.Context) error { return j.err }

func newJobsRouter(t *testing.T) http.Handler {
	t.Helper()
	s := scheduler.New(logger.NewNop()).WithRetry(0, 0)
	require.NoError(t, s.AddJob(stubJob{name: "portfolio_refresh"}))
	require.NoError(t, s.AddJob(stubJob{name: "cache_sweep", err: errors.New("sweep failed")}))

	for i := 0; i < 3; i++ {
		_, err := s.RunJob("portfolio_refresh")
		require.NoError(t, err)
	}
	_, err := s.RunJob("cache_sweep")
	require.NoError(t, err)

	h := NewJobsHandler(s)
	r := mux.NewRouter()
	r.HandleFunc("/api/jobs", h.ListJobs)
	r.HandleFunc("/api/jobs/{name}", h.GetJob)
	return r
}

func TestJobsHandler_ListJobs(t *testing.T) {
	r := newJobsRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats []scheduler.JobStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Len(t, stats, 2)

	assert.Equal(t, "cache_sweep", stats[0].JobName, "ordered by name")
	assert.Equal(t, 1, stats[0].FailureCount)
	assert.Equal(t, "portfolio_refresh", stats[1].JobName)
	assert.Equal(t, 3, stats[1].SuccessCount)
	assert.Equal(t, 1.0, stats[1].SuccessRate)
}

func TestJobsHandler_GetJob(t *testing.T) {
	r := newJobsRouter(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantLatest int
	}{
		{"default limit", "/api/jobs/portfolio_refresh", http.StatusOK, 3},
		{"explicit limit", "/api/jobs/portfolio_refresh?limit=2", http.StatusOK, 2},
		{"bad limit", "/api/jobs/portfolio_refresh?limit=0", http.StatusBadRequest, 0},
		{"unknown job", "/api/jobs/missing", http.StatusNotFound, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				return
			}
			var detail JobDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
			assert.Len(t, detail.Latest, tt.wantLatest)
			assert.Empty(t, detail.Failures)
			assert.Equal(t, "portfolio_refresh", detail.Stats.JobName)
		})
	}
}

func TestJobsHandler_FailuresListed(t *testing.T) {
	r := newJobsRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/cache_sweep", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var detail JobDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	require.Len(t, detail.Failures, 1)
	assert.Equal(t, "sweep failed", detail.Failures[0].Error)
	assert.Zero(t, detail.SuccessRate)
}
