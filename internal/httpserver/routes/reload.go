package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mrunner/internal/httpserver/handlers"
)

func init() { Register(registerReload) }

func registerReload(r chi.Router, d deps.Deps) {
	r.With(localOnly(d)...).Post("/reload", handlers.ReloadPlugins(d))
}
