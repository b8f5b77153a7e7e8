package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/rouse/internal/domain"
	"github.com/MrSnakeDoc/rouse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rouse/internal/logger"
)

const defaultWakesLimit = 20

type wakesResponse struct {
	Wakes  []*domain.WakeEvent `json:"wakes"`
	Count  int                 `json:"count"`
	Totals map[string]int64    `json:"totals,omitempty"`
}

// Wakes lists recent wake events from the Redis mirror, newest first.
// ?limit=n caps the result, defaulting to 20.
func Wakes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Store == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"message": "wake history is disabled, no Redis configured",
			})
			return
		}

		limit := defaultWakesLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		events, err := d.Store.RecentWakeEvents(r.Context(), limit)
		if err != nil {
			d.Logger.Error("failed to list recent wakes",
				logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"message": "failed to read wake history",
			})
			return
		}

		// Encode an empty list as [], not null.
		if events == nil {
			events = []*domain.WakeEvent{}
		}

		// Totals are secondary; losing them must not hide the events.
		totals, err := d.Store.WakeCounts(r.Context())
		if err != nil {
			d.Logger.Warn("failed to read wake totals",
				logger.Error(err))
			totals = nil
		}

		writeJSON(w, http.StatusOK, wakesResponse{
			Wakes:  events,
			Count:  len(events),
			Totals: totals,
		})
	}
}
