package handler

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/quakewatch/quakewatch/internal/api/respond"
	"github.com/quakewatch/quakewatch/internal/drill"
	"github.com/quakewatch/quakewatch/internal/feed"
	"github.com/quakewatch/quakewatch/internal/seismic"
)

const dateFormat = "2006-01-02"

// GetEvents serves the merged event feed: upstream USGS events for the
// Philippine region plus, on request, synthetic drill events. Time
// descending, normalized to the engine's event shape.
// @Summary List seismic events
// @Description Merged USGS + drill event feed, time descending.
// @Tags events
// @Produce json
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param minMagnitude query number false "Minimum magnitude (default 3.0)"
// @Param includeSynthetic query bool false "Include drill events"
// @Success 200 {array} seismic.Event
// @Failure 502 {object} respond.ErrorResponse
// @Router /api/v1/events [get]
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	end := time.Now().UTC()
	if v := q.Get("endDate"); v != "" {
		if t, err := time.Parse(dateFormat, v); err == nil {
			// endDate is inclusive: extend to the following midnight.
			end = t.Add(24 * time.Hour)
		}
	}
	start := end.AddDate(0, 0, -h.cfg.FeedWindowDays)
	if v := q.Get("startDate"); v != "" {
		if t, err := time.Parse(dateFormat, v); err == nil {
			start = t
		}
	}

	minMag := h.cfg.FeedMinMagnitude
	if v := q.Get("minMagnitude"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			minMag = f
		}
	}

	includeSynthetic := false
	if v := q.Get("includeSynthetic"); v != "" {
		includeSynthetic, _ = strconv.ParseBool(v)
	}

	events, err := h.usgs.Fetch(r.Context(), feed.Query{
		Start: start, End: end, MinMagnitude: minMag,
	})
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadGateway,
			"FEED_UNAVAILABLE", "Failed to fetch earthquake data", err.Error())
		return
	}

	if includeSynthetic {
		drills, err := drill.List(r.Context(), h.pool, start, end, minMag)
		if err != nil {
			respond.WriteErrorDetail(w, http.StatusInternalServerError,
				"DRILL_QUERY_FAILED", "Failed to load drill events", err.Error())
			return
		}
		events = append(events, drills...)
		sort.Slice(events, func(i, j int) bool {
			return events[i].Time > events[j].Time
		})
	}

	if events == nil {
		events = []seismic.Event{}
	}
	respond.WriteJSON(w, http.StatusOK, events)
}
