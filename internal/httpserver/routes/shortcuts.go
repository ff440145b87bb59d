package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mrunner/internal/httpserver/handlers"
)

func init() { Register(registerShortcuts) }

func registerShortcuts(r chi.Router, d deps.Deps) {
	r.Route("/shortcuts", func(r chi.Router) {
		r.Use(localOnly(d)...)
		r.Get("/", handlers.ListShortcuts(d))
		r.Post("/", handlers.AddShortcut(d))
		r.Get("/conflicts", handlers.Conflicts(d))
		r.Put("/resolution", handlers.SetResolution(d))
		r.Put("/{id}/hotkey", handlers.UpdateShortcut(d))
		r.Post("/{id}/reset", handlers.ResetShortcut(d))
		r.Post("/{id}/toggle", handlers.ToggleShortcut(d))
		r.Delete("/{id}", handlers.DeleteShortcut(d))
	})

	r.Route("/hotkeys", func(r chi.Router) {
		r.Use(localOnly(d)...)
		r.Get("/global", handlers.GlobalHotkeys(d))
		r.Post("/trigger", handlers.TriggerHotkey(d))
	})
}
