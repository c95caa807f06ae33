package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wonny/warroom/internal/contracts"
)

// StatusResponse is the body of every degraded response
type StatusResponse struct {
	Status  contracts.Status `json:"status"`
	Message string           `json:"message"`
	Error   string           `json:"error,omitempty"`
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondFailure maps a pipeline error to a status code and a friendly body
func respondFailure(w http.ResponseWriter, err error) {
	status := contracts.StatusFor(err)
	respondJSON(w, httpStatusFor(status), StatusResponse{
		Status:  status,
		Message: contracts.StatusMessage(status),
		Error:   err.Error(),
	})
}

func httpStatusFor(status contracts.Status) int {
	switch status {
	case contracts.StatusOK:
		return http.StatusOK
	case contracts.StatusConfigurationProblem:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusServiceUnavailable
	}
}
