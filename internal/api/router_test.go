package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/wonny/warroom/internal/api/handlers"
	"github.com/wonny/warroom/internal/contracts"
	"github.com/wonny/warroom/internal/policy"
	"github.com/wonny/warroom/internal/scheduler"
	"github.com/wonny/warroom/pkg/logger"
)

type stubReports struct{}

func (stubReports) Report(ctx context.Context, source string, target decimal.Decimal) (*contracts.Report, error) {
	return &contracts.Report{Source: source, Status: contracts.StatusOK}, nil
}

type stubDiagnoser struct{}

func (stubDiagnoser) Diagnose(ctx context.Context, ticker string) (*contracts.DiagnosticResult, error) {
	if ticker == "2330" {
		return nil, contracts.ErrInvalidTicker
	}
	return &contracts.DiagnosticResult{Ticker: ticker}, nil
}

type panicReports struct{}

func (panicReports) Report(ctx context.Context, source string, target decimal.Decimal) (*contracts.Report, error) {
	panic("boom")
}

func newTestRouter(reports handlers.ReportService) http.Handler {
	log := logger.NewNop()
	return NewRouter(Handlers{
		Portfolio: handlers.NewPortfolioHandler(reports, "feed.csv", decimal.Zero, log),
		Diagnose:  handlers.NewDiagnoseHandler(stubDiagnoser{}, log),
		Policy:    handlers.NewPolicyHandler(policy.Default()),
		Stream:    handlers.NewStreamHandler(reports, "feed.csv", decimal.Zero, log),
		Jobs:      handlers.NewJobsHandler(scheduler.New(log)),
	}, log)
}

func TestRouter(t *testing.T) {
	router := newTestRouter(stubReports{})

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/portfolio", http.StatusOK},
		{http.MethodGet, "/api/portfolio/positions", http.StatusOK},
		{http.MethodGet, "/api/diagnose/2330.TW", http.StatusOK},
		{http.MethodGet, "/api/diagnose/2330", http.StatusBadRequest},
		{http.MethodGet, "/api/policy", http.StatusOK},
		{http.MethodGet, "/api/jobs", http.StatusOK},
		{http.MethodGet, "/api/jobs/portfolio_refresh", http.StatusNotFound},
		{http.MethodPost, "/api/portfolio", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	router := newTestRouter(panicReports{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/portfolio", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
