package search

import (
	"math"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
)

// Field keys.
const (
	KeyName        = "name"
	KeyKeywords    = "keywords"
	KeyDescription = "description"
)

const (
	DefaultThreshold          = 0.3
	DefaultMinMatchCharLength = 2

	// epsilon stands in for a perfect field score so a perfect match does
	// not zero out the other fields of the product.
	epsilon = 2.220446049250313e-16
)

// Options configures the weighted fuzzy index.
type Options struct {
	NameWeight        float64
	KeywordsWeight    float64
	DescriptionWeight float64

	// Threshold is the largest error ratio (edits / query length) a field
	// may have and still match. 0 only accepts exact substrings.
	Threshold float64

	// MinMatchCharLength is the shortest query fuzzy slop applies to.
	// Shorter queries must occur verbatim.
	MinMatchCharLength int
}

// DefaultOptions returns the launcher weighting: name over keywords over
// description.
func DefaultOptions() Options {
	return Options{
		NameWeight:         2.0,
		KeywordsWeight:     1.5,
		DescriptionWeight:  0.5,
		Threshold:          DefaultThreshold,
		MinMatchCharLength: DefaultMinMatchCharLength,
	}
}

// FieldMatch reports where a query matched one field value.
type FieldMatch struct {
	Key     string   `json:"key"`
	Value   string   `json:"value"`
	Indices [][2]int `json:"indices"`
	Score   float64  `json:"score"`
}

// Result is one matched candidate. Score is lower-is-better in [0,1].
type Result struct {
	Command domain.Command
	Index   int
	Score   float64
	Matches []FieldMatch
}

type field struct {
	key    string
	weight float64
	value  string
	lower  string
	norm   float64
}

type document struct {
	cmd    domain.Command
	fields []field
}

// Index is an immutable weighted index over one candidate list.
type Index struct {
	opts    Options
	version uint64
	docs    []document
}

// NewIndex builds an index over commands. version identifies the list it
// was built from; callers rebuild when their list version moves.
func NewIndex(commands []domain.Command, version uint64, opts Options) *Index {
	total := opts.NameWeight + opts.KeywordsWeight + opts.DescriptionWeight
	if total <= 0 {
		total = 1
	}
	wName := opts.NameWeight / total
	wKeywords := opts.KeywordsWeight / total
	wDesc := opts.DescriptionWeight / total

	docs := make([]document, 0, len(commands))
	for _, cmd := range commands {
		d := document{cmd: cmd}
		d.fields = appendField(d.fields, KeyName, wName, cmd.Name)
		for _, kw := range cmd.Keywords {
			d.fields = appendField(d.fields, KeyKeywords, wKeywords, kw)
		}
		d.fields = appendField(d.fields, KeyDescription, wDesc, cmd.Description)
		docs = append(docs, d)
	}

	return &Index{opts: opts, version: version, docs: docs}
}

func appendField(fields []field, key string, weight float64, value string) []field {
	if weight <= 0 || strings.TrimSpace(value) == "" {
		return fields
	}
	return append(fields, field{
		key:    key,
		weight: weight,
		value:  value,
		lower:  strings.ToLower(value),
		norm:   fieldNorm(value),
	})
}

// Version returns the candidate list version the index was built from.
func (idx *Index) Version() uint64 {
	return idx.version
}

// Len returns the number of indexed candidates.
func (idx *Index) Len() int {
	return len(idx.docs)
}

// Search runs query against every candidate and returns the matches, best
// first. An empty query returns nil: callers treat that as "all pass".
func (idx *Index) Search(query string) []Result {
	pattern := strings.ToLower(strings.TrimSpace(query))
	if pattern == "" {
		return nil
	}

	patternLen := len([]rune(pattern))
	maxErrors := 0
	if patternLen >= idx.opts.MinMatchCharLength {
		maxErrors = int(math.Floor(idx.opts.Threshold * float64(patternLen)))
	}

	var results []Result
	for i, d := range idx.docs {
		total := 1.0
		var matches []FieldMatch
		for _, f := range d.fields {
			errs, at, ok := approxMatch(pattern, f.lower, maxErrors)
			if !ok {
				continue
			}
			score := float64(errs) / float64(patternLen)
			if score > idx.opts.Threshold {
				continue
			}
			base := score
			if base == 0 {
				base = epsilon
			}
			total *= math.Pow(base, f.weight*f.norm)
			matches = append(matches, FieldMatch{
				Key:     f.key,
				Value:   f.value,
				Indices: [][2]int{at},
				Score:   score,
			})
		}
		if len(matches) == 0 {
			continue
		}
		results = append(results, Result{Command: d.cmd, Index: i, Score: total, Matches: matches})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score < results[b].Score
	})
	return results
}

// RankScore turns an internal lower-is-better score into the filter's
// higher-is-better signal, clamped at 0.
func RankScore(internal float64) float64 {
	return math.Max(0, 1-internal)
}
