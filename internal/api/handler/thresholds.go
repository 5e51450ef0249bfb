package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quakewatch/quakewatch/internal/api/respond"
	"github.com/quakewatch/quakewatch/internal/threshold"
)

// GetThreshold returns the owner's stored alert threshold.
// @Summary Get alert threshold
// @Description Returns the alert threshold for an owner.
// @Tags thresholds
// @Produce json
// @Param ownerID path string true "Owner id"
// @Success 200 {object} threshold.Threshold
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/thresholds/{ownerID} [get]
func (h *Handler) GetThreshold(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")

	t, err := threshold.Get(r.Context(), h.pool, ownerID)
	if errors.Is(err, threshold.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Alert threshold not found")
		return
	}
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError,
			"THRESHOLD_QUERY_FAILED", "Failed to load threshold", err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, t)
}

// PutThreshold creates or fully replaces the owner's alert threshold.
// @Summary Save alert threshold
// @Description Creates or fully replaces the owner's alert threshold.
// @Tags thresholds
// @Accept json
// @Produce json
// @Param ownerID path string true "Owner id"
// @Param threshold body threshold.Threshold true "Threshold"
// @Success 200 {object} threshold.Threshold
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/thresholds/{ownerID} [put]
func (h *Handler) PutThreshold(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")

	var t threshold.Threshold
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest,
			"INVALID_BODY", "Malformed threshold payload", err.Error())
		return
	}
	t.OwnerID = ownerID

	if t.MinMagnitude == 0 && t.RadiusKm == 0 {
		// Empty body defaults: lazily created thresholds start from engine
		// defaults anchored at the submitted coordinate.
		t = threshold.Default(ownerID, t.Latitude, t.Longitude, t.LocationName)
	}

	if err := threshold.Validate(t); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_THRESHOLD", err.Error())
		return
	}

	if err := threshold.Upsert(r.Context(), h.pool, t); err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError,
			"THRESHOLD_SAVE_FAILED", "Failed to save threshold", err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, t)
}
