package palette

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/search"
)

// Search ranks raw once, without debounce. Bookmarks come from searcher
// for the parsed query and are listed first; bookmark rows the ranker
// holds from a session are left out. A nil searcher skips bookmarks. On a
// bookmark error the command rows are still returned with the error.
func Search(ctx context.Context, ranker Ranker, searcher BookmarkSearcher, raw string, limit int) ([]search.Ranked, error) {
	var (
		rows []search.Ranked
		err  error
	)
	if searcher != nil && strings.TrimSpace(raw) != "" {
		var found []domain.Bookmark
		found, err = searcher.SearchBookmarks(ctx, domain.ParseQuery(raw))
		for _, c := range domain.BookmarkCommands(found) {
			rows = append(rows, search.Ranked{Command: c, Score: 1})
		}
	}

	for _, row := range ranker.Rank(raw) {
		if row.Command.IsBookmark() {
			continue
		}
		rows = append(rows, row)
	}

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, err
}
