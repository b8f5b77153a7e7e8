package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/rouse/internal/httpserver/deps"
)

type componentStatus struct {
	OK             bool   `json:"ok"`
	ServicesLoaded *int   `json:"services_loaded,omitempty"`
	LastRefresh    string `json:"last_refresh,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Impact         string `json:"impact,omitempty"`
	Error          string `json:"error,omitempty"`
}

type infraResponse struct {
	RoutingMode string                     `json:"routing_mode"`
	Components  map[string]componentStatus `json:"components"`
}

// Infra reports per-component status and an overall routing mode so an
// operator can tell at a glance why requests behave the way they do.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		servicesCount := d.Registry.Count()
		lastRefresh := "never"
		if t := d.Reconciler.LastRefresh(); !t.IsZero() {
			lastRefresh = t.Format("2006-01-02 15:04:05")
		}

		components := map[string]componentStatus{
			"registry": {
				OK:             servicesCount > 0,
				ServicesLoaded: &servicesCount,
				LastRefresh:    lastRefresh,
			},
			"redis": checkRedis(d),
			"prober": {
				OK:   true,
				Mode: "tcp-connect",
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			RoutingMode: determineRoutingMode(components),
			Components:  components,
		})
	}
}

func determineRoutingMode(components map[string]componentStatus) string {
	// An empty registry means nothing can be routed at all.
	if reg, exists := components["registry"]; exists {
		if !reg.OK || (reg.ServicesLoaded != nil && *reg.ServicesLoaded == 0) {
			return "critical"
		}
	}

	// Redis trouble only costs the wake history, routing still works.
	if rds, exists := components["redis"]; exists {
		if !rds.OK {
			return "degraded"
		}
		if rds.Mode == "disabled" {
			return "standalone"
		}
	}

	return "full"
}

func checkRedis(d deps.Deps) componentStatus {
	// No Redis configured is a supported setup, not a failure.
	if d.RedisClient == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "wake-history-disabled",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "wake-history-unavailable",
			Error:  err.Error(),
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "wake-history-enabled",
	}
}
