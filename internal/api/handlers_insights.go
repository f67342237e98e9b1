package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/strivefit/engagement-engine/internal/domain"
	"github.com/strivefit/engagement-engine/internal/engagement"
	"github.com/strivefit/engagement-engine/internal/service/insights"
)

// GetDashboard returns the combined analytics view. ?cached=true serves
// the last cached computation when one is warm.
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	var (
		view *insights.DashboardView
		err  error
	)
	if r.URL.Query().Get("cached") == "true" {
		view, err = h.insights.CachedDashboard(r.Context())
	} else {
		view, err = h.insights.Dashboard(r.Context())
	}
	if err != nil {
		h.respondInsightsError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// GetAtRiskClients returns assessments for every client not at tier
// "none", sorted by score descending.
func (h *Handlers) GetAtRiskClients(w http.ResponseWriter, r *http.Request) {
	list, err := h.insights.AtRisk(r.Context())
	if err != nil {
		h.respondInsightsError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(list),
		"clients": list,
	})
}

// GetClientRisk returns one client's assessment with recommendations and
// personal trend.
func (h *Handlers) GetClientRisk(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	assessment, err := h.insights.AssessClient(r.Context(), clientID)
	if err != nil {
		h.respondInsightsError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, assessment)
}

// GetClientRecommendations returns just the intervention list for one
// client, for the messaging screen.
func (h *Handlers) GetClientRecommendations(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	assessment, err := h.insights.AssessClient(r.Context(), clientID)
	if err != nil {
		h.respondInsightsError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"client_id":       clientID,
		"tier":            assessment.Assessment.Tier,
		"recommendations": assessment.Recommendations,
	})
}

// GetEngagementTrend returns time-bucketed activity counts.
// ?unit=day|week|month&count=N override the configured window.
func (h *Handlers) GetEngagementTrend(w http.ResponseWriter, r *http.Request) {
	var window engagement.Window
	q := r.URL.Query()
	if unit := q.Get("unit"); unit != "" {
		window.Unit = engagement.WindowUnit(unit)
		window.Count = queryInt(q.Get("count"), 12)
	}

	buckets, err := h.insights.Trend(r.Context(), window)
	if err != nil {
		h.respondInsightsError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"buckets": buckets})
}

// GetCohortRetention returns the join-month retention table, oldest
// month first. ?months=N overrides the configured depth.
func (h *Handlers) GetCohortRetention(w http.ResponseWriter, r *http.Request) {
	months := queryInt(r.URL.Query().Get("months"), 0)
	rows, err := h.insights.CohortRetention(r.Context(), months)
	if err != nil {
		h.respondInsightsError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"cohorts": rows})
}

// GetRevenueSnapshot returns the monetary rollup.
// ?lookback_months=N&top=N override the configured period and ranking.
func (h *Handlers) GetRevenueSnapshot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	snap, err := h.insights.RevenueSnapshot(r.Context(),
		queryInt(q.Get("lookback_months"), 0), queryInt(q.Get("top"), 0))
	if err != nil {
		h.respondInsightsError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *Handlers) respondInsightsError(w http.ResponseWriter, err error) {
	var invalid *domain.InvalidRecordError
	switch {
	case errors.Is(err, insights.ErrClientNotFound):
		respondError(w, http.StatusNotFound, "client not found")
	case errors.Is(err, insights.ErrInvalidWindow):
		respondError(w, http.StatusBadRequest, "invalid trend window")
	case errors.As(err, &invalid):
		respondError(w, http.StatusUnprocessableEntity, invalid.Error())
	default:
		log.Printf("[api] insights request failed: %v", err)
		respondError(w, http.StatusInternalServerError, "analytics computation failed")
	}
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
