package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mrunner/internal/httpserver/handlers"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/bookmarks", func(r chi.Router) {
		r.Use(localOnly(d)...)
		r.Get("/", handlers.ListBookmarks(d))
		r.Post("/", handlers.AddBookmark(d))
		r.Get("/tags", handlers.ListTags(d))
		r.Put("/tags/{tag}", handlers.RenameTag(d))
		r.Delete("/tags/{tag}", handlers.DeleteTag(d))
		r.Get("/{id}", handlers.GetBookmark(d))
		r.Put("/{id}", handlers.UpdateBookmark(d))
		r.Delete("/{id}", handlers.DeleteBookmark(d))
	})
}
