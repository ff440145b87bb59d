package search

import (
	"strings"
	"sync"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
)

// CandidateSource publishes the current candidate list. Version must move
// every time the list is replaced; it is called once per scored row, so it
// has to be cheap.
type CandidateSource interface {
	Version() uint64
	Candidates() (uint64, []domain.Command)
}

// Ranked is one visible row with its filter score.
type Ranked struct {
	Command domain.Command
	Score   float64
	Matches []FieldMatch
}

// Filter is the per-row scoring function of the result list. Bookmarks
// pass through untouched because the bookmark store already filtered them;
// everything else goes through the fuzzy index, searched once per query.
type Filter struct {
	mu     sync.Mutex
	source CandidateSource
	opts   Options
	logger logger.Logger

	built     bool
	index     *Index
	bookmarks []domain.Command
	bmIDs     map[string]struct{}
	bmValues  map[string]struct{}
	all       []domain.Command

	// memo for the last query
	query   string
	results []Result
	byID    map[string]float64
	byValue map[string]float64

	searches int
}

// NewFilter creates a filter over source.
func NewFilter(source CandidateSource, opts Options, log logger.Logger) *Filter {
	return &Filter{
		source: source,
		opts:   opts,
		logger: log,
	}
}

func normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Score returns how well the row with canonical display value matches
// query, in [0,1]. 0 hides the row. Two candidates sharing a display value
// share a score (the best of the two); prefer ScoreID.
func (f *Filter) Score(value, query string) float64 {
	q := normalize(query)
	if q == "" {
		return 1
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.refresh()
	if _, ok := f.bmValues[value]; ok {
		return 1
	}
	f.ensure(q)
	return f.byValue[value]
}

// ScoreID is Score keyed by the candidate's stable id.
func (f *Filter) ScoreID(id, query string) float64 {
	q := normalize(query)
	if q == "" {
		return 1
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.refresh()
	if _, ok := f.bmIDs[id]; ok {
		return 1
	}
	f.ensure(q)
	return f.byID[id]
}

// Rank returns the visible rows for query: bookmarks first in store order,
// then fuzzy matches best first. An empty query shows every candidate.
func (f *Filter) Rank(query string) []Ranked {
	q := normalize(query)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.refresh()

	if q == "" {
		rows := make([]Ranked, 0, len(f.all))
		for _, c := range f.all {
			rows = append(rows, Ranked{Command: c, Score: 1})
		}
		return rows
	}

	f.ensure(q)
	rows := make([]Ranked, 0, len(f.bookmarks)+len(f.results))
	for _, c := range f.bookmarks {
		rows = append(rows, Ranked{Command: c, Score: 1})
	}
	for _, r := range f.results {
		score := RankScore(r.Score)
		if score <= 0 {
			continue
		}
		rows = append(rows, Ranked{Command: r.Command, Score: score, Matches: r.Matches})
	}
	return rows
}

// Version returns the candidate version the index was last built from.
func (f *Filter) Version() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.index == nil {
		return 0
	}
	return f.index.Version()
}

// refresh rebuilds the index when the source version moved. Caller holds mu.
func (f *Filter) refresh() {
	if f.built && f.source.Version() == f.index.Version() {
		return
	}

	version, candidates := f.source.Candidates()

	var commands []domain.Command
	f.bookmarks = nil
	f.bmIDs = make(map[string]struct{})
	f.bmValues = make(map[string]struct{})
	for _, c := range candidates {
		if c.IsBookmark() {
			f.bookmarks = append(f.bookmarks, c)
			f.bmIDs[c.ID] = struct{}{}
			f.bmValues[c.DisplayValue()] = struct{}{}
			continue
		}
		commands = append(commands, c)
	}

	f.all = candidates
	f.index = NewIndex(commands, version, f.opts)
	f.built = true
	f.query = ""
	f.results = nil
	f.byID = nil
	f.byValue = nil

	if f.logger != nil {
		f.logger.Debug("fuzzy index rebuilt",
			logger.Uint64("version", version),
			logger.Int("commands", len(commands)),
			logger.Int("bookmarks", len(f.bookmarks)))
	}
}

// ensure runs the fuzzy search for q unless it is memoised. Caller holds mu.
func (f *Filter) ensure(q string) {
	if f.byID != nil && f.query == q {
		return
	}

	f.results = f.index.Search(q)
	f.searches++
	f.byID = make(map[string]float64, len(f.results))
	f.byValue = make(map[string]float64, len(f.results))
	for _, r := range f.results {
		score := RankScore(r.Score)
		f.byID[r.Command.ID] = max(f.byID[r.Command.ID], score)
		value := r.Command.DisplayValue()
		f.byValue[value] = max(f.byValue[value], score)
	}
	f.query = q
}
