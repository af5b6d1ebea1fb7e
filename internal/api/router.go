package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/LLeom997/AlphBasket-sub000/internal/api/handlers"
	"github.com/LLeom997/AlphBasket-sub000/pkg/logger"
)

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: routing lives in this function only
func NewRouter(
	simulations *handlers.SimulationHandler,
	assets *handlers.AssetHandler,
	limiter *RateLimiter,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	if limiter != nil {
		api.Use(rateLimitMiddleware(limiter, log))
	}

	// Simulations
	api.HandleFunc("/simulations", simulations.Simulate).Methods("POST")
	api.HandleFunc("/simulations/batch", simulations.SimulateBatch).Methods("POST")

	// Assets
	api.HandleFunc("/assets/{ticker}/metrics", assets.GetMetrics).Methods("GET")
	api.HandleFunc("/assets/{ticker}/indicators", assets.GetIndicators).Methods("GET")

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "alphbasket-api",
	})
}
