package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
)

type queryRequest struct {
	Query string `json:"query"`
}

// SetQuery feeds a keystroke to the palette session. The response holds
// the rows for the current candidates; bookmark rows follow once the
// debounced search lands, see Results.
func SetQuery(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		if err := decode(r, &req); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newRows(req.Query, d.Session.SetQuery(req.Query)))
	}
}

// Results ranks the session's current query again.
func Results(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, newRows(d.Session.Query(), d.Session.Results()))
	}
}
