package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mrunner/internal/httpserver/handlers"
)

func init() { Register(registerSearch) }

func registerSearch(r chi.Router, d deps.Deps) {
	guard := r.With(localOnly(d)...)
	guard.Get("/search", handlers.Search(d))
	guard.Put("/palette/query", handlers.SetQuery(d))
	guard.Get("/palette/results", handlers.Results(d))
}
