package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fightmetrics/predict-api/internal/store"
)

// TopRatings handles GET /api/v1/ratings/top.
// Query params: limit (optional, default 10, max 100).
func (h *Handler) TopRatings(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			h.errorResponse(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	fighters, err := h.prediction.Leaderboard(r.Context(), limit)
	if err != nil {
		h.logger.Errorw("Failed to load leaderboard", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"fighters": fighters,
	})
}

// LatestReport handles GET /api/v1/reports/latest.
func (h *Handler) LatestReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.prediction.LatestReport(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNoReport) {
			h.errorResponse(w, http.StatusNotFound, "No evaluation report available yet")
			return
		}
		h.logger.Errorw("Failed to load latest report", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load report")
		return
	}
	h.jsonResponse(w, http.StatusOK, report)
}
