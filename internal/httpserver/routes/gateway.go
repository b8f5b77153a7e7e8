package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/rouse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rouse/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/rouse/internal/httpserver/mw"
)

func init() { Register(registerGateway) }

// The catch-all is registered for every method on every path; chi still
// prefers the named routes above it, so /health and friends keep working.
// It must not sit behind EnforceHost: unknown hostnames get their 404
// from the handler, not a 403 from middleware.
func registerGateway(r chi.Router, d deps.Deps) {
	limited := r.With(mw.RateLimit(mw.RateLimitConfig{
		PerMinute:  d.RateLimitPerMinute,
		Burst:      d.RateLimitBurst,
		TrustProxy: d.TrustProxy,
	}))

	var h http.Handler = handlers.Gateway(d)
	limited.Handle("/", h)
	limited.Handle("/*", h)
}
