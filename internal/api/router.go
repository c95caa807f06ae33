package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/warroom/internal/api/handlers"
	"github.com/wonny/warroom/pkg/logger"
)

// Handlers groups the endpoint handlers mounted by NewRouter
type Handlers struct {
	Portfolio *handlers.PortfolioHandler
	Diagnose  *handlers.DiagnoseHandler
	Policy    *handlers.PolicyHandler
	Stream    *handlers.StreamHandler
	Jobs      *handlers.JobsHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API
	api := r.PathPrefix("/api").Subrouter()

	// Portfolio endpoints
	api.HandleFunc("/portfolio", h.Portfolio.GetReport).Methods("GET")
	api.HandleFunc("/portfolio/positions", h.Portfolio.GetPositions).Methods("GET")

	// Diagnostic endpoints
	api.HandleFunc("/diagnose/{ticker}", h.Diagnose.GetDiagnosis).Methods("GET")

	// Policy
	api.HandleFunc("/policy", h.Policy.GetPolicy).Methods("GET")

	// Background jobs
	if h.Jobs != nil {
		api.HandleFunc("/jobs", h.Jobs.ListJobs).Methods("GET")
		api.HandleFunc("/jobs/{name}", h.Jobs.GetJob).Methods("GET")
	}

	// Websocket push (no logging wrapper, the hijacked writer must stay intact)
	if h.Stream != nil {
		r.HandleFunc("/ws/portfolio", h.Stream.Stream).Methods("GET")
	}

	// Apply middleware
	api.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "warroom-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
