package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mrunner/internal/httpserver/mw"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

var registry []Registrar

// Register adds a route group. Groups mount in registration order, which
// is the init order of this package's files.
func Register(reg Registrar) {
	registry = append(registry, reg)
}

// RegisterAll mounts every registered route group on r. server.NewRouter
// calls it once per router.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, reg := range registry {
		reg(r, d)
	}
}

// localOnly is the guard of every route that reads or changes launcher
// state: the peer must be in the CIDR allow list and the Host header must
// name this server.
func localOnly(d deps.Deps) []Middleware {
	return []Middleware{
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	}
}
