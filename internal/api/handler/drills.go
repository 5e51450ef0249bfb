package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/quakewatch/quakewatch/internal/api/respond"
	"github.com/quakewatch/quakewatch/internal/drill"
	"github.com/quakewatch/quakewatch/internal/seismic"
)

// PostDrill injects a synthetic drill event.
// @Summary Inject drill event
// @Description Stores a synthetic event that participates in event listing and alert evaluation.
// @Tags drills
// @Accept json
// @Produce json
// @Param event body seismic.Event true "Drill event"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/drills [post]
func (h *Handler) PostDrill(w http.ResponseWriter, r *http.Request) {
	var ev seismic.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest,
			"INVALID_BODY", "Malformed drill payload", err.Error())
		return
	}

	if ev.Magnitude <= 0 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_DRILL", "magnitude is required")
		return
	}
	if ev.Place == "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_DRILL", "place is required")
		return
	}
	if ev.Time == 0 {
		ev.Time = time.Now().UnixMilli()
	}
	ev.Synthetic = true

	id, err := drill.Create(r.Context(), h.pool, ev, r.Header.Get("X-User-ID"))
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError,
			"DRILL_CREATE_FAILED", "Failed to store drill event", err.Error())
		return
	}

	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    id,
		"event": ev,
	})
}

// GetDrills lists stored drill events, newest first.
// @Summary List drill events
// @Tags drills
// @Produce json
// @Success 200 {array} seismic.Event
// @Router /api/v1/drills [get]
func (h *Handler) GetDrills(w http.ResponseWriter, r *http.Request) {
	// Drills self-purge after a week; list the full retained window.
	end := time.Now()
	start := end.Add(-7 * 24 * time.Hour)

	events, err := drill.List(r.Context(), h.pool, start, end, 0)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError,
			"DRILL_QUERY_FAILED", "Failed to list drill events", err.Error())
		return
	}
	if events == nil {
		events = []seismic.Event{}
	}
	respond.WriteJSON(w, http.StatusOK, events)
}

// DeleteDrills removes all stored drill events.
// @Summary Purge drill events
// @Tags drills
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/drills [delete]
func (h *Handler) DeleteDrills(w http.ResponseWriter, r *http.Request) {
	purged, err := drill.PurgeAll(r.Context(), h.pool)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError,
			"DRILL_PURGE_FAILED", "Failed to purge drill events", err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"purged": purged})
}
