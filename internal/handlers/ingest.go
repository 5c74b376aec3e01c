package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/fightmetrics/predict-api/internal/models"
)

// IngestFights handles POST /api/v1/ingest/fights.
// Accepts newline-separated JSON fight records. Bad lines are skipped
// and counted; the batch never fails as a whole.
func (h *Handler) IngestFights(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	defer r.Body.Close()

	processed, skipped := 0, 0
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var fight models.Fight
		if err := json.Unmarshal([]byte(line), &fight); err != nil {
			h.logger.Warnw("Failed to unmarshal fight in batch", "error", err)
			skipped++
			continue
		}
		if err := h.validator.Struct(&fight); err != nil {
			h.logger.Warnw("Fight failed validation", "error", err, "event", fight.EventName)
			skipped++
			continue
		}

		if !h.pool.Enqueue(fight) {
			h.logger.Warn("Ingest queue unavailable, dropping remaining fights in batch")
			break
		}
		processed++
	}

	h.jsonResponse(w, http.StatusAccepted, map[string]interface{}{
		"status":    "accepted",
		"processed": processed,
		"skipped":   skipped,
	})
}

// IngestFighters handles POST /api/v1/ingest/fighters.
// Accepts a JSON array of fighter profiles and upserts them
// synchronously; profile volume is tiny compared to fights.
func (h *Handler) IngestFighters(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	var profiles []models.FighterProfile
	if err := json.NewDecoder(r.Body).Decode(&profiles); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	processed, skipped := 0, 0
	for _, p := range profiles {
		if err := h.validator.Struct(&p); err != nil {
			h.logger.Warnw("Fighter profile failed validation", "error", err)
			skipped++
			continue
		}
		if err := h.fighters.Upsert(r.Context(), p); err != nil {
			h.logger.Errorw("Failed to upsert fighter", "error", err, "name", p.FullName())
			h.errorResponse(w, http.StatusInternalServerError, "Failed to store fighter profiles")
			return
		}
		processed++
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "stored",
		"processed": processed,
		"skipped":   skipped,
	})
}
