package palette

import (
	"context"
	"errors"
	"testing"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
)

func TestOneShotSearch(t *testing.T) {
	f := newFixture()
	defer f.session.Close()

	// a stale session snapshot must not leak into one-shot results
	f.catalog.UpdateBookmarks([]domain.Bookmark{{Index: 99, URI: "https://stale.example"}})

	rows, err := Search(context.Background(), f.session.ranker, f.searcher, "code #dev", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) == 0 || rows[0].Command.ID != domain.BookmarkID(1) {
		t.Fatalf("rows = %+v, want fresh bookmark first", rows)
	}
	for _, r := range rows {
		if r.Command.ID == domain.BookmarkID(99) {
			t.Error("stale bookmark returned")
		}
	}
	if q := f.searcher.calls[0].q; q.Term != "code" || len(q.TagList()) != 1 {
		t.Errorf("searcher got %+v", q)
	}
}

func TestOneShotSearchEdges(t *testing.T) {
	f := newFixture()
	defer f.session.Close()

	rows, err := Search(context.Background(), f.session.ranker, f.searcher, "  ", 1)
	if err != nil || len(rows) != 1 {
		t.Errorf("blank query rows = %d, err = %v", len(rows), err)
	}
	if len(f.searcher.calls) != 0 {
		t.Error("blank query must not search bookmarks")
	}

	rows, err = Search(context.Background(), f.session.ranker, nil, "code", 0)
	if err != nil || len(rows) != 1 {
		t.Errorf("nil searcher rows = %+v, err = %v", rows, err)
	}

	f.searcher.err = errors.New("database is locked")
	rows, err = Search(context.Background(), f.session.ranker, f.searcher, "code", 0)
	if err == nil {
		t.Error("bookmark error not reported")
	}
	if len(rows) != 1 || rows[0].Command.ID != "app-code" {
		t.Errorf("command rows lost on bookmark error: %+v", rows)
	}
}
