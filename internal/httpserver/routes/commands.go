package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mrunner/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/mrunner/internal/httpserver/mw"
)

func init() { Register(registerCommands) }

func registerCommands(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:         10,
		RefillPerMin:  120,
		MaxEntries:    64,
		SweepInterval: time.Minute,
		TrustProxy:    d.TrustProxy,
	})
	r.Route("/commands/{id}", func(r chi.Router) {
		r.Use(append(localOnly(d), limit)...)
		r.Post("/run", handlers.RunCommand(d))
		r.Post("/input", handlers.SubmitInput(d))
	})
}
