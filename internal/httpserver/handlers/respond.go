package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/rouse/internal/domain"
	"github.com/MrSnakeDoc/rouse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rouse/internal/logger"
)

type serviceResponse struct {
	Message     string `json:"message"`
	ServiceName string `json:"service_name"`
	ServiceURL  string `json:"service_url"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respond answers for a resolved service. Browsers (Accept contains
// text/html) get the service's waiting page; everything else gets
// JSON. Both carry the same status code, so a polling client can act
// on 202 vs 503 without parsing the body.
func respond(w http.ResponseWriter, r *http.Request, d deps.Deps, svc *domain.Service, message string, status int) {
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		var buf bytes.Buffer
		err := d.Templates.Render(&buf, svc.Name)
		if err == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(status)
			_, _ = buf.WriteTo(w)
			return
		}
		// A broken override page downgrades the answer to JSON.
		d.Logger.Error("failed to render waiting page",
			logger.String("service", svc.Name),
			logger.Error(err))
	}

	writeJSON(w, status, serviceResponse{
		Message:     message,
		ServiceName: svc.Name,
		ServiceURL:  svc.AppURL,
	})
}
