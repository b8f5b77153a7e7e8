package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/rouse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rouse/internal/httpserver/handlers"
)

func init() { Register(registerHealth) }

// /health stays unguarded so load balancers can reach it from anywhere.
func registerHealth(r chi.Router, d deps.Deps) {
	r.Get("/health", handlers.Healthz(d))
}
