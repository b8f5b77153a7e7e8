package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/rouse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rouse/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/rouse/internal/httpserver/mw"
)

func init() { Register(registerPreview) }

func registerPreview(r chi.Router, d deps.Deps) {
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Get("/preview/{name}", handlers.Preview(d))
}
