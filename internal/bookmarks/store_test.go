package bookmarks

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
)

func strPtr(s string) *string { return &s }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenDB(context.Background(), Memory)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	s := NewStore(db)
	t.Cleanup(func() { s.Close() })
	return s
}

// seed adds three bookmarks; ids are 1, 2, 3 in insertion order.
func seed(t *testing.T, s *Store) {
	t.Helper()
	inputs := []Input{
		{URL: "https://go.dev", Title: strPtr("Go"), Tags: []string{"dev", "go"}, Description: strPtr("The Go language")},
		{URL: "https://github.com", Title: strPtr("GitHub"), Tags: []string{"dev"}},
		{URL: "https://news.ycombinator.com", Title: strPtr("Hacker News"), Tags: []string{"news"}},
	}
	for _, in := range inputs {
		if _, err := s.Add(context.Background(), in); err != nil {
			t.Fatalf("Add(%s) error = %v", in.URL, err)
		}
	}
}

func indexes(bs []domain.Bookmark) []int {
	out := []int{}
	for _, b := range bs {
		out = append(out, b.Index)
	}
	return out
}

func TestAddAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Add(ctx, Input{
		URL:         "https://example.com",
		Title:       strPtr("Example"),
		Tags:        []string{"test", " example ", ""},
		Description: strPtr("A test bookmark"),
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	want := domain.Bookmark{
		Index:       id,
		URI:         "https://example.com",
		Title:       "Example",
		Tags:        "test, example",
		Description: "A test bookmark",
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestAddErrors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, Input{URL: "  "}); !errors.Is(err, ErrEmptyURL) {
		t.Errorf("Add(empty) = %v, want ErrEmptyURL", err)
	}
	if _, err := s.Add(ctx, Input{URL: "https://a.example"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(ctx, Input{URL: "https://a.example"}); !errors.Is(err, ErrDuplicateURL) {
		t.Errorf("Add(dup) = %v, want ErrDuplicateURL", err)
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(indexes(all), []int{3, 2, 1}) {
		t.Errorf("List(0) = %v, want newest first", indexes(all))
	}

	two, _ := s.List(ctx, 2)
	if !reflect.DeepEqual(indexes(two), []int{3, 2}) {
		t.Errorf("List(2) = %v", indexes(two))
	}
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{"empty lists all", "", []int{3, 2, 1}},
		{"term matches url", "github", []int{2}},
		{"term matches title case insensitively", "hacker", []int{3}},
		{"term matches description", "language", []int{1}},
		{"single tag", "#dev", []int{2, 1}},
		{"tags and", "#dev,go", []int{1}},
		{"tags or", "#go+news", []int{3, 1}},
		{"term and tag", "git #dev", []int{2}},
		{"partial tag does not match", "#de", []int{}},
		{"no match", "nothing-here", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchBookmarks(context.Background(), domain.ParseQuery(tt.query))
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(indexes(got), tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, indexes(got), tt.want)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	tags := []string{"code"}
	if err := s.Update(ctx, 2, Patch{Title: strPtr("GitHub Home"), Tags: &tags}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(ctx, 2)
	if got.Title != "GitHub Home" || got.Tags != "code" || got.URI != "https://github.com" {
		t.Errorf("after Update() = %+v", got)
	}

	if err := s.Update(ctx, 2, Patch{}); err != nil {
		t.Errorf("empty patch = %v", err)
	}
	if err := s.Update(ctx, 99, Patch{Title: strPtr("x")}); !errors.Is(err, ErrBookmarkNotFound) {
		t.Errorf("Update(unknown) = %v, want ErrBookmarkNotFound", err)
	}
	if err := s.Update(ctx, 2, Patch{URL: strPtr("https://go.dev")}); !errors.Is(err, ErrDuplicateURL) {
		t.Errorf("Update(dup url) = %v, want ErrDuplicateURL", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	if err := s.Delete(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, 1); !errors.Is(err, ErrBookmarkNotFound) {
		t.Errorf("Get(deleted) = %v, want ErrBookmarkNotFound", err)
	}
	if err := s.Delete(ctx, 1); !errors.Is(err, ErrBookmarkNotFound) {
		t.Errorf("Delete(deleted) = %v", err)
	}
}

func TestTags(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []domain.Tag{{Name: "dev", Count: 2}, {Name: "go", Count: 1}, {Name: "news", Count: 1}}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("ListTags() = %v, want %v", tags, want)
	}

	if err := s.RenameTag(ctx, "dev", "code"); err != nil {
		t.Fatal(err)
	}
	b, _ := s.Get(ctx, 1)
	if b.Tags != "code, go" {
		t.Errorf("after RenameTag() tags = %q", b.Tags)
	}

	if err := s.DeleteTag(ctx, "code"); err != nil {
		t.Fatal(err)
	}
	b, _ = s.Get(ctx, 2)
	if b.Tags != "" {
		t.Errorf("after DeleteTag() tags = %q, want empty", b.Tags)
	}
	tags, _ = s.ListTags(ctx)
	if len(tags) != 2 {
		t.Errorf("ListTags() = %v", tags)
	}
}

func TestOpenDBOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "bookmarks.db")
	ctx := context.Background()

	db, err := OpenDB(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	s := NewStore(db)
	if _, err := s.Add(ctx, Input{URL: "https://example.org"}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	db, err = OpenDB(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	s = NewStore(db)
	defer s.Close()
	all, _ := s.List(ctx, 0)
	if len(all) != 1 {
		t.Errorf("reopened db has %d bookmarks, want 1", len(all))
	}
}
