package domain

import "strings"

// BookmarkQuery is a raw launcher query split for the bookmark store.
type BookmarkQuery struct {
	Term string
	// Tags is nil when the query has no "#" part. Multiple OR'd tags are
	// joined by ",".
	Tags *string
	IsOr bool
}

// HasTags reports whether a tag filter was given.
func (q BookmarkQuery) HasTags() bool {
	return q.Tags != nil
}

// TagList splits the tag filter on ",", dropping empty entries.
func (q BookmarkQuery) TagList() []string {
	if q.Tags == nil {
		return nil
	}
	var out []string
	for _, t := range strings.Split(*q.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ParseQuery splits on the first literal "#". The text before it is the
// free-text term, the text after it the tag filter. A "+" in the tag part
// means the tags are OR'd.
// Example: "readme #docs+work" -> {Term: "readme", Tags: "docs,work", IsOr: true}
func ParseQuery(raw string) BookmarkQuery {
	before, after, found := strings.Cut(raw, "#")
	if !found {
		return BookmarkQuery{Term: raw}
	}

	term := strings.TrimSpace(before)
	tagPart := strings.TrimSpace(after)

	if strings.Contains(tagPart, "+") {
		tags := strings.ReplaceAll(tagPart, "+", ",")
		return BookmarkQuery{Term: term, Tags: &tags, IsOr: true}
	}

	return BookmarkQuery{Term: term, Tags: &tagPart}
}
