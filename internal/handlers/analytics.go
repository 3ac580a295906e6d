package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vinsight/crm/internal/cache"
)

// GetSummary handles GET /analytics/summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.data.Summary(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	h.JSON(w, http.StatusOK, summary)
}

// GetMarketingSummary handles GET /marketing/summary.
func (h *Handler) GetMarketingSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.data.MarketingSummary(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to compute marketing summary")
		return
	}
	h.JSON(w, http.StatusOK, summary)
}

// GetDailyRollup handles GET /marketing/daily/{date}. Rollups are
// derived artifacts; a missing date means no spend was recorded, which
// is a 404 rather than an error.
func (h *Handler) GetDailyRollup(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		h.Error(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	var rollup cache.DailyRollup
	if !h.data.Cache().Get("ads/daily", date, &rollup) {
		h.Error(w, http.StatusNotFound, "no rollup for date")
		return
	}
	h.JSON(w, http.StatusOK, rollup)
}
