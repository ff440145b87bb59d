package search

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
)

// span is a matched [start, end] rune range, end inclusive.
type span [2]int

// approxMatch finds the substring of text with the fewest edits from pattern,
// ignoring where in text it occurs. Both strings are expected lower-cased.
// maxErrors bounds the search; ok is false when nothing is within it.
func approxMatch(pattern, text string, maxErrors int) (errs int, at span, ok bool) {
	if pattern == "" {
		return 0, span{}, false
	}

	if i := strings.Index(text, pattern); i >= 0 {
		start := len([]rune(text[:i]))
		return 0, span{start, start + len([]rune(pattern)) - 1}, true
	}
	if maxErrors <= 0 {
		return 0, span{}, false
	}

	p := []rune(pattern)
	t := []rune(text)
	m, n := len(p), len(t)

	best := maxErrors + 1
	var bestSpan span

	// A substring within maxErrors edits of pattern is at most maxErrors
	// runes shorter or longer than it.
	minLen := max(1, m-maxErrors)
	maxLen := min(n, m+maxErrors)
	for size := minLen; size <= maxLen; size++ {
		for start := 0; start+size <= n; start++ {
			d := levenshtein.ComputeDistance(pattern, string(t[start:start+size]))
			if d < best {
				best = d
				bestSpan = span{start, start + size - 1}
			}
		}
	}

	if best > maxErrors {
		return 0, span{}, false
	}
	return best, bestSpan, true
}

// fieldNorm shortens the weight of long fields: 1/sqrt(token count),
// rounded to three decimals.
func fieldNorm(value string) float64 {
	tokens := len(strings.Fields(value))
	if tokens == 0 {
		return 1
	}
	n := 1 / math.Sqrt(float64(tokens))
	return float64(int(n*1000+0.5)) / 1000
}
