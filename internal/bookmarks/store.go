// Package bookmarks is the SQLite bookmark store. The table layout is the
// one buku uses, so an existing buku database can be pointed at directly.
package bookmarks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrDuplicateURL     = errors.New("bookmark url already exists")
	ErrEmptyURL         = errors.New("bookmark url is empty")
)

const selectColumns = "SELECT id, URL, metadata, tags, desc FROM bookmarks"

// Input is a new bookmark. Nil fields are stored empty.
type Input struct {
	URL         string   `json:"url"`
	Title       *string  `json:"title,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	URL         *string   `json:"url,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Description *string   `json:"description,omitempty"`
}

// Store reads and writes the bookmarks table.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database, see OpenDB.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// List returns bookmarks newest first. limit <= 0 returns all of them.
func (s *Store) List(ctx context.Context, limit int) ([]domain.Bookmark, error) {
	q := selectColumns + " ORDER BY id DESC"
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	return s.query(ctx, q, args...)
}

// Search matches term against url, title, tags and description and keeps
// bookmarks carrying all (or, with or set, any) of tags. An empty term
// without tags lists everything.
func (s *Store) Search(ctx context.Context, term string, tags []string, or bool) ([]domain.Bookmark, error) {
	if term == "" && len(tags) == 0 {
		return s.List(ctx, 0)
	}

	var conds []string
	var args []any
	if term != "" {
		conds = append(conds, "(URL LIKE ? OR metadata LIKE ? OR tags LIKE ? OR desc LIKE ?)")
		like := "%" + term + "%"
		args = append(args, like, like, like, like)
	}
	if len(tags) > 0 {
		tagConds := make([]string, 0, len(tags))
		for _, t := range tags {
			tagConds = append(tagConds, "tags LIKE ?")
			args = append(args, "%,"+t+",%")
		}
		joiner := " AND "
		if or {
			joiner = " OR "
		}
		conds = append(conds, "("+strings.Join(tagConds, joiner)+")")
	}

	q := selectColumns + " WHERE " + strings.Join(conds, " AND ") + " ORDER BY id DESC"
	return s.query(ctx, q, args...)
}

// SearchBookmarks runs a parsed palette query.
func (s *Store) SearchBookmarks(ctx context.Context, q domain.BookmarkQuery) ([]domain.Bookmark, error) {
	return s.Search(ctx, q.Term, q.TagList(), q.IsOr)
}

// Get returns one bookmark.
func (s *Store) Get(ctx context.Context, id int) (domain.Bookmark, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	b, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Bookmark{}, fmt.Errorf("%w: %d", ErrBookmarkNotFound, id)
	}
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to get bookmark %d: %w", id, err)
	}
	return b, nil
}

// Add inserts a bookmark and returns its id.
func (s *Store) Add(ctx context.Context, in Input) (int, error) {
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return 0, ErrEmptyURL
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO bookmarks (URL, metadata, tags, desc) VALUES (?, ?, ?, ?)",
		url, deref(in.Title), formatTags(in.Tags), deref(in.Description))
	if err != nil {
		if isUnique(err) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateURL, url)
		}
		return 0, fmt.Errorf("failed to add bookmark: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read bookmark id: %w", err)
	}
	return int(id), nil
}

// Update applies p to bookmark id. An empty patch does nothing.
func (s *Store) Update(ctx context.Context, id int, p Patch) error {
	var sets []string
	var args []any
	if p.URL != nil {
		if strings.TrimSpace(*p.URL) == "" {
			return ErrEmptyURL
		}
		sets = append(sets, "URL = ?")
		args = append(args, strings.TrimSpace(*p.URL))
	}
	if p.Title != nil {
		sets = append(sets, "metadata = ?")
		args = append(args, *p.Title)
	}
	if p.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, formatTags(*p.Tags))
	}
	if p.Description != nil {
		sets = append(sets, "desc = ?")
		args = append(args, *p.Description)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx, "UPDATE bookmarks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		if isUnique(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateURL, *p.URL)
		}
		return fmt.Errorf("failed to update bookmark %d: %w", id, err)
	}
	return expectRow(res, id)
}

// Delete removes bookmark id.
func (s *Store) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bookmarks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark %d: %w", id, err)
	}
	return expectRow(res, id)
}

// ListTags counts every tag, most used first, ties by name.
func (s *Store) ListTags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT tags FROM bookmarks WHERE tags != ','")
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan tags: %w", err)
		}
		for _, t := range domain.SplitTags(raw) {
			counts[t]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	tags := make([]domain.Tag, 0, len(counts))
	for name, n := range counts {
		tags = append(tags, domain.Tag{Name: name, Count: n})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Name < tags[j].Name
	})
	return tags, nil
}

// RenameTag renames a tag on every bookmark carrying it.
func (s *Store) RenameTag(ctx context.Context, from, to string) error {
	oldPattern := "," + from + ","
	newPattern := "," + to + ","
	if _, err := s.db.ExecContext(ctx,
		"UPDATE bookmarks SET tags = REPLACE(tags, ?, ?) WHERE tags LIKE ?",
		oldPattern, newPattern, "%"+oldPattern+"%"); err != nil {
		return fmt.Errorf("failed to rename tag %q: %w", from, err)
	}
	return nil
}

// DeleteTag strips a tag from every bookmark.
func (s *Store) DeleteTag(ctx context.Context, tag string) error {
	pattern := "," + tag + ","
	if _, err := s.db.ExecContext(ctx,
		"UPDATE bookmarks SET tags = REPLACE(tags, ?, ',') WHERE tags LIKE ?",
		pattern, "%"+pattern+"%"); err != nil {
		return fmt.Errorf("failed to delete tag %q: %w", tag, err)
	}
	return nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]domain.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	out := []domain.Bookmark{}
	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (domain.Bookmark, error) {
	var (
		b                     domain.Bookmark
		title, tags, descText sql.NullString
	)
	if err := row.Scan(&b.Index, &b.URI, &title, &tags, &descText); err != nil {
		return domain.Bookmark{}, err
	}
	b.Title = title.String
	b.Tags = strings.Join(domain.SplitTags(tags.String), ", ")
	b.Description = descText.String
	return b, nil
}

// formatTags stores tags the buku way: ",a,b," and "," for none.
func formatTags(tags []string) string {
	var clean []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		return ","
	}
	return "," + strings.Join(clean, ",") + ","
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func expectRow(res sql.Result, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrBookmarkNotFound, id)
	}
	return nil
}

func isUnique(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
