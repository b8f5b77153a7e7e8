package handlers

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/rouse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rouse/internal/logger"
)

// Preview renders the waiting page for a service name without probing
// or waking anything, so override templates can be checked in a browser.
func Preview(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		var buf bytes.Buffer
		if err := d.Templates.Render(&buf, name); err != nil {
			d.Logger.Error("failed to render preview",
				logger.String("name", name),
				logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"message": "Internal error: " + err.Error(),
			})
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	}
}
