package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mrunner/internal/httpserver/handlers"
)

func init() { Register(registerFolders) }

func registerFolders(r chi.Router, d deps.Deps) {
	r.Route("/folders", func(r chi.Router) {
		r.Use(localOnly(d)...)
		r.Get("/", handlers.ListFolders(d))
		r.Post("/", handlers.AddFolder(d))
		r.Delete("/{id}", handlers.RemoveFolder(d))
		r.Post("/{id}/hide", handlers.SetFolderHidden(d, true))
		r.Post("/{id}/show", handlers.SetFolderHidden(d, false))
	})
}
