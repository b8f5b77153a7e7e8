package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/rouse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rouse/internal/logger"
	"github.com/MrSnakeDoc/rouse/internal/utils"
	"github.com/MrSnakeDoc/rouse/internal/wake"
)

// Gateway routes every request by its Host header. A request for a known
// hostname either redirects to the service when it answers its probe port,
// or triggers a wake and tells the client to wait.
func Gateway(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Pick up config dir edits before resolving, at most once per interval.
		d.Reconciler.MaybeRefresh()

		hostname := strings.ToLower(utils.ParseHostNoPort(r.Host))

		svc, ok := d.Registry.LookupHostname(hostname)
		if !ok {
			d.Logger.Warn("no service registered for hostname",
				logger.String("hostname", hostname),
				logger.String("path", r.URL.Path))
			d.Metrics.RequestsTotal.WithLabelValues("not_found").Inc()
			writeJSON(w, http.StatusNotFound, map[string]string{
				"message": "Service not found for " + hostname,
			})
			return
		}

		// Background noise (sync agents, favicons) must not wake the host.
		if svc.IsIgnored(r.URL.Path) {
			d.Logger.Info("ignored path while host is managed",
				logger.String("service", svc.Name),
				logger.String("path", r.URL.Path))
			d.Metrics.RequestsTotal.WithLabelValues("ignored").Inc()
			respond(w, r, d, svc, "Server offline - background sync ignored", http.StatusServiceUnavailable)
			return
		}

		if d.Prober.Check(r.Context(), svc.HostAddr, svc.HostPort) {
			d.Metrics.ProbeChecks.WithLabelValues("online").Inc()
			d.Metrics.RequestsTotal.WithLabelValues("online").Inc()
			d.Logger.Info("host online, redirecting",
				logger.String("service", svc.Name),
				logger.String("url", svc.AppURL))
			http.Redirect(w, r, svc.AppURL, http.StatusFound)
			return
		}
		d.Metrics.ProbeChecks.WithLabelValues("offline").Inc()

		req := wake.Request{
			ClientAddr: utils.ClientIP(r, d.TrustProxy),
			Path:       r.URL.Path,
			Hostname:   hostname,
		}
		if err := d.Dispatcher.Wake(r.Context(), svc, req); err != nil {
			d.Logger.Error("wake failed",
				logger.String("service", svc.Name),
				logger.Error(err))
			d.Metrics.RequestsTotal.WithLabelValues("error").Inc()
			respond(w, r, d, svc, "Internal error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		d.Metrics.RequestsTotal.WithLabelValues("waking").Inc()
		respond(w, r, d, svc, "Waking up the server...", http.StatusAccepted)
	}
}
