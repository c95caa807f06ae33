package jobs

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wonny/warroom/internal/contracts"
	"github.com/wonny/warroom/pkg/logger"
)

// ReportSource produces a (possibly memoized) report.
// *portfolio.Service implements it.
type ReportSource interface {
	Report(ctx context.Context, source string, target decimal.Decimal) (*contracts.Report, error)
}

// PortfolioRefreshJob refreshes the portfolio on a schedule and hands
// each report to a callback
// ⭐ SSOT: 주기적 포트폴리오 갱신은 이 Job에서만
type PortfolioRefreshJob struct {
	service  ReportSource
	source   string
	target   decimal.Decimal
	schedule string
	onReport func(*contracts.Report)
	logger   *logger.Logger
}

// NewPortfolioRefreshJob creates a refresh job. onReport may be nil.
func NewPortfolioRefreshJob(service ReportSource, source string, target decimal.Decimal, schedule string, onReport func(*contracts.Report), log *logger.Logger) *PortfolioRefreshJob {
	return &PortfolioRefreshJob{
		service:  service,
		source:   source,
		target:   target,
		schedule: schedule,
		onReport: onReport,
		logger:   log,
	}
}

// Name returns the job name
func (j *PortfolioRefreshJob) Name() string {
	return "portfolio_refresh"
}

// Schedule returns the configured cron schedule
func (j *PortfolioRefreshJob) Schedule() string {
	return j.schedule
}

// Run executes one refresh
func (j *PortfolioRefreshJob) Run(ctx context.Context) error {
	report, err := j.service.Report(ctx, j.source, j.target)
	if err != nil {
		return fmt.Errorf("refresh portfolio: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"report_id":   report.ID.String(),
		"positions":   len(report.Positions),
		"warnings":    len(report.Warnings),
		"stale":       report.Stale,
		"total_value": report.Summary.TotalMarketValue.StringFixed(0),
	}).Info("Scheduled portfolio refresh completed")

	if j.onReport != nil {
		j.onReport(report)
	}
	return nil
}
