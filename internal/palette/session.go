// Package palette drives one launcher query session: rows are ranked on
// every keystroke and the bookmark category is refreshed after the input
// pauses.
package palette

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
	"github.com/MrSnakeDoc/mrunner/internal/search"
)

// DefaultDebounce is how long the input must stay unchanged before the
// bookmark store is queried.
const DefaultDebounce = 300 * time.Millisecond

// BookmarkSearcher is the external bookmark store.
type BookmarkSearcher interface {
	SearchBookmarks(ctx context.Context, q domain.BookmarkQuery) ([]domain.Bookmark, error)
}

// BookmarkSink receives the bookmark snapshot of the latest query.
type BookmarkSink interface {
	UpdateBookmarks(bookmarks []domain.Bookmark)
}

// Ranker scores the current candidates for a query.
type Ranker interface {
	Rank(query string) []search.Ranked
}

type timer interface {
	Stop() bool
}

// Session holds the query string of one palette. Every SetQuery issues a
// new sequence number; a bookmark response is applied only while its
// number is still the latest one, so a slow answer for an old query can
// never overwrite a newer one.
type Session struct {
	mu      sync.Mutex
	query   string
	seq     uint64
	pending timer
	closed  bool

	ranker   Ranker
	searcher BookmarkSearcher
	sink     BookmarkSink
	logger   logger.Logger
	delay    time.Duration

	afterFunc func(d time.Duration, f func()) timer

	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

// Option customises a Session.
type Option func(*Session)

// WithDebounce sets the pause before a bookmark search.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) { s.delay = d }
}

// NewSession creates a session. searcher may be nil when no bookmark store
// is configured.
func NewSession(ranker Ranker, searcher BookmarkSearcher, sink BookmarkSink, log logger.Logger, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ranker:   ranker,
		searcher: searcher,
		sink:     sink,
		logger:   log,
		delay:    DefaultDebounce,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetQuery replaces the query and returns the rows for it. A non-empty
// query (re)arms the bookmark search; an empty one cancels it.
func (s *Session) SetQuery(raw string) []search.Ranked {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return s.ranker.Rank(raw)
	}

	s.query = raw
	s.seq++
	seq := s.seq
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	if strings.TrimSpace(raw) != "" && s.searcher != nil {
		s.pending = s.afterFunc(s.delay, func() { s.fire(seq, raw) })
	}
	s.mu.Unlock()

	return s.ranker.Rank(raw)
}

// Query returns the current query string.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Results ranks the current query against the current candidates.
func (s *Session) Results() []search.Ranked {
	return s.ranker.Rank(s.Query())
}

// Refresh queries the bookmark store for the current query now, bypassing
// the debounce. An empty query lists every bookmark. The result is subject
// to the same sequence check as a debounced search.
func (s *Session) Refresh() {
	s.mu.Lock()
	if s.closed || s.searcher == nil {
		s.mu.Unlock()
		return
	}
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	seq, raw := s.seq, s.query
	s.mu.Unlock()

	s.fire(seq, raw)
}

// Close cancels the pending search and any search in flight.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.mu.Unlock()

	s.cancel()
	s.inflight.Wait()
}

func (s *Session) fire(seq uint64, raw string) {
	s.mu.Lock()
	if s.closed || seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	q := domain.ParseQuery(raw)
	bookmarks, err := s.searcher.SearchBookmarks(s.ctx, q)
	if err != nil {
		s.logger.Warn("bookmark search failed",
			logger.String("term", q.Term),
			logger.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.seq {
		s.logger.Debug("discarding stale bookmark results",
			logger.Uint64("seq", seq),
			logger.Uint64("latest", s.seq))
		return
	}
	s.sink.UpdateBookmarks(bookmarks)
	s.logger.Debug("bookmark results applied",
		logger.Uint64("seq", seq),
		logger.Int("count", len(bookmarks)))
}
