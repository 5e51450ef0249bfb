package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/quakewatch/quakewatch/internal/api/respond"
	"github.com/quakewatch/quakewatch/internal/fanout"
	"github.com/quakewatch/quakewatch/internal/feed"
	"github.com/quakewatch/quakewatch/internal/threshold"
)

// NotifyEarthquake fans one event out over SMS to every matching recipient.
// @Summary Trigger earthquake fan-out
// @Description Evaluates every SMS-enabled threshold against the event and dispatches one batched SMS call.
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body feed.TriggerRequest true "Event and optional live settings"
// @Success 200 {object} fanout.Result
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} fanout.Result
// @Router /api/v1/notifications/earthquake [post]
func (h *Handler) NotifyEarthquake(w http.ResponseWriter, r *http.Request) {
	var treq feed.TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&treq); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest,
			"INVALID_BODY", "Malformed notification payload", err.Error())
		return
	}

	ev := treq.Event
	if ev.Magnitude <= 0 {
		respond.WriteError(w, http.StatusBadRequest,
			"INVALID_EVENT", "Event magnitude is required")
		return
	}
	if !ev.HasCoordinates() && ev.Place == "" {
		respond.WriteError(w, http.StatusBadRequest,
			"INVALID_EVENT", "Event coordinates or place are required")
		return
	}

	override := h.resolveOverride(r, treq.Override)

	result, err := h.notifier.Notify(r.Context(), ev, override)
	if err != nil {
		// A failed batch still returns the preserved queue so the caller
		// knows who would have been notified.
		respond.WriteJSON(w, http.StatusBadGateway, result)
		return
	}
	respond.WriteJSON(w, http.StatusOK, result)
}

// resolveOverride turns a live settings payload into a fan-out override by
// attaching the owner's stored contact details. An override without a usable
// contact is dropped with a warning rather than failing the whole fan-out.
func (h *Handler) resolveOverride(r *http.Request, o *feed.TriggerOverride) *fanout.Override {
	if o == nil || o.OwnerID == "" {
		return nil
	}

	username, phone, err := threshold.OwnerContact(r.Context(), h.pool, o.OwnerID)
	if err != nil {
		slog.Warn("Override dropped, contact lookup failed",
			"owner_id", o.OwnerID, "error", err)
		return nil
	}
	if phone == "" {
		slog.Warn("Override dropped, owner has no phone number", "owner_id", o.OwnerID)
		return nil
	}

	return &fanout.Override{
		Threshold: threshold.Threshold{
			OwnerID:      o.OwnerID,
			Latitude:     o.Latitude,
			Longitude:    o.Longitude,
			MinMagnitude: o.MinMagnitude,
			RadiusKm:     o.RadiusKm,
		},
		Username: username,
		Phone:    phone,
	}
}
