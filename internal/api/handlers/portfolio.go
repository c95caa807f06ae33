package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/warroom/internal/contracts"
	"github.com/wonny/warroom/pkg/logger"
)

// ReportService produces portfolio reports.
// *portfolio.Service implements it.
type ReportService interface {
	Report(ctx context.Context, source string, target decimal.Decimal) (*contracts.Report, error)
}

// PortfolioHandler handles portfolio report endpoints
// ⭐ SSOT: 포트폴리오 API 핸들러는 이 구조체에서만
type PortfolioHandler struct {
	service       ReportService
	source        string
	defaultTarget decimal.Decimal
	logger        *logger.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(service ReportService, source string, defaultTarget decimal.Decimal, log *logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		service:       service,
		source:        source,
		defaultTarget: defaultTarget,
		logger:        log,
	}
}

// GetReport returns the full report
// GET /api/portfolio?target=
func (h *PortfolioHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GetPositions returns the valued positions only
// GET /api/portfolio/positions
func (h *PortfolioHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, report.Positions)
}

// load fetches the report and writes the failure response when needed
func (h *PortfolioHandler) load(w http.ResponseWriter, r *http.Request) (*contracts.Report, bool) {
	target, err := ParseTarget(r.URL.Query().Get("target"), h.defaultTarget)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	report, err := h.service.Report(r.Context(), h.source, target)
	if err != nil {
		h.logger.WithError(err).Warn("Portfolio report unavailable")
		respondFailure(w, err)
		return nil, false
	}

	if report.Status == contracts.StatusWaitingForData {
		respondJSON(w, http.StatusServiceUnavailable, report)
		return nil, false
	}

	return report, true
}

// ParseTarget reads a positive decimal target, or returns the default
// when raw is empty
func ParseTarget(raw string, def decimal.Decimal) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return def, nil
	}

	target, err := decimal.NewFromString(raw)
	if err != nil || !target.IsPositive() {
		return decimal.Zero, errInvalidTarget
	}
	return target, nil
}

type handlerError string

func (e handlerError) Error() string { return string(e) }

const errInvalidTarget = handlerError("target must be a positive number")
