package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/warroom/internal/contracts"
	"github.com/wonny/warroom/pkg/logger"
)

// Diagnoser scores a single ticker.
// *diagnostic.Scorer implements it.
type Diagnoser interface {
	Diagnose(ctx context.Context, ticker string) (*contracts.DiagnosticResult, error)
}

// DiagnoseHandler handles the single-ticker health check
type DiagnoseHandler struct {
	scorer Diagnoser
	logger *logger.Logger
}

// NewDiagnoseHandler creates a new diagnose handler
func NewDiagnoseHandler(scorer Diagnoser, log *logger.Logger) *DiagnoseHandler {
	return &DiagnoseHandler{
		scorer: scorer,
		logger: log,
	}
}

// GetDiagnosis returns the score, tags and outlook for a ticker
// GET /api/diagnose/{ticker}
func (h *DiagnoseHandler) GetDiagnosis(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	result, err := h.scorer.Diagnose(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, contracts.ErrInvalidTicker) {
			respondError(w, http.StatusBadRequest, "enter a valid ticker with exchange suffix (e.g. 2330.TW)")
			return
		}

		h.logger.WithError(err).WithField("ticker", ticker).Warn("Diagnosis unavailable")
		respondJSON(w, http.StatusServiceUnavailable, StatusResponse{
			Status:  contracts.StatusWaitingForData,
			Message: contracts.StatusMessage(contracts.StatusWaitingForData),
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}
