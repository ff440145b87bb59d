package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
	"github.com/MrSnakeDoc/mrunner/internal/palette"
)

// Search ranks q once, without the palette session. A failed bookmark
// search still answers with the command rows.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("q")
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		var searcher palette.BookmarkSearcher
		if d.Bookmarks != nil {
			searcher = d.Bookmarks
		}
		rows, err := palette.Search(r.Context(), d.Filter, searcher, raw, limit)
		if err != nil {
			d.Logger.Warn("bookmark search failed",
				logger.String("query", raw),
				logger.Error(err))
		}
		d.Logger.Debug("search request",
			logger.String("query", raw),
			logger.Int("rows", len(rows)))
		writeJSON(w, http.StatusOK, newRows(raw, rows))
	}
}
