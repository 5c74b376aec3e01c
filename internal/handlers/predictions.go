package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fightmetrics/predict-api/internal/pipeline"
	"github.com/fightmetrics/predict-api/internal/service"
)

// PredictMatchup handles GET /api/v1/predictions/matchup.
// Query params: fighter1, fighter2, model (optional).
// A bout the model cannot call comes back with ok=false and 200; the
// absence of a prediction is an answer, not a server failure.
func (h *Handler) PredictMatchup(w http.ResponseWriter, r *http.Request) {
	fighter1 := r.URL.Query().Get("fighter1")
	fighter2 := r.URL.Query().Get("fighter2")
	if fighter1 == "" || fighter2 == "" {
		h.errorResponse(w, http.StatusBadRequest, "fighter1 and fighter2 are required")
		return
	}
	if fighter1 == fighter2 {
		h.errorResponse(w, http.StatusBadRequest, "fighter1 and fighter2 must differ")
		return
	}

	pred, err := h.prediction.PredictMatchup(fighter1, fighter2, r.URL.Query().Get("model"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownModel):
			h.errorResponse(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotReady):
			h.errorResponse(w, http.StatusServiceUnavailable, err.Error())
		default:
			h.logger.Errorw("Matchup prediction failed", "error", err)
			h.errorResponse(w, http.StatusInternalServerError, "Prediction failed")
		}
		return
	}
	h.jsonResponse(w, http.StatusOK, pred)
}

// ListModels handles GET /api/v1/predictions/models.
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"models": h.prediction.ModelNames(),
	})
}

// RunEvaluation handles POST /api/v1/predictions/evaluate.
// Query params: test_events, force (both optional).
func (h *Handler) RunEvaluation(w http.ResponseWriter, r *http.Request) {
	opts := pipeline.Options{
		TestEvents:   h.testEvents,
		Window:       h.historyWindow,
		ForceRetrain: r.URL.Query().Get("force") == "true",
	}
	if v := r.URL.Query().Get("test_events"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.errorResponse(w, http.StatusBadRequest, "test_events must be a positive integer")
			return
		}
		opts.TestEvents = n
	}

	report, err := h.prediction.Evaluate(r.Context(), opts)
	if err != nil {
		h.logger.Errorw("Evaluation run failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Evaluation failed: "+err.Error())
		return
	}
	h.jsonResponse(w, http.StatusOK, report)
}

// RefreshModels handles POST /api/v1/models/refresh.
func (h *Handler) RefreshModels(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	if err := h.prediction.Refresh(r.Context(), force); err != nil {
		h.logger.Errorw("Model refresh failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Refresh failed: "+err.Error())
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]string{"status": "refreshed"})
}
