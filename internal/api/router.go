package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/salesbonus/internal/api/handlers"
	"github.com/wonny/salesbonus/pkg/config"
	"github.com/wonny/salesbonus/pkg/logger"
)

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(analysisHandler *handlers.AnalysisHandler, runHandler *handlers.RunHandler, cfg config.APIConfig, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Analysis endpoints
	api.HandleFunc("/analysis", analysisHandler.Run).Methods(http.MethodPost)
	api.HandleFunc("/analysis/ranking", analysisHandler.Ranking).Methods(http.MethodPost)
	api.HandleFunc("/analysis/bonuses", analysisHandler.Bonuses).Methods(http.MethodPost)
	api.HandleFunc("/policy", analysisHandler.Policy).Methods(http.MethodGet)

	// Stored runs ("latest" is registered before {id})
	api.HandleFunc("/runs", runHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/runs/latest", runHandler.Latest).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", runHandler.Get).Methods(http.MethodGet)

	// Rate limiting applies to /api only
	api.Use(rateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, log))

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "salesbonus-api",
	})
}
