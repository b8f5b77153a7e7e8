package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/rouse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rouse/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/rouse/internal/httpserver/mw"
)

func init() { Register(registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	guarded := r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)
	guarded.Get("/api/wakes", handlers.Wakes(d))
	guarded.Get("/api/infra", handlers.Infra(d))
}
