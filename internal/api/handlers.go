// Package api exposes the analytics engine to the dashboard screens over
// HTTP. Handlers only decode requests and encode computed views; all
// analytics live behind the insights service.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/strivefit/engagement-engine/internal/config"
	"github.com/strivefit/engagement-engine/internal/service/insights"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	insights *insights.Service
	config   *config.Config
	started  time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *insights.Service, cfg *config.Config) *Handlers {
	return &Handlers{
		insights: svc,
		config:   cfg,
		started:  time.Now(),
	}
}

// HealthCheck reports liveness and uptime.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"service": "engagement-engine",
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
