package domain

import (
	"strconv"
	"strings"
)

const (
	BookmarkGroup    = "Bookmarks"
	BookmarkIDPrefix = "bookmark-"
)

// Bookmark is a snapshot of a record owned by the bookmark store.
// The launcher never creates or deletes bookmarks itself.
type Bookmark struct {
	// Index is the primary key assigned by the store.
	Index int `json:"index"`

	URI   string `json:"uri"`
	Title string `json:"title"`

	// Tags is a ", " separated tag string.
	// Example: "dev, go"
	Tags string `json:"tags"`

	Description string `json:"description"`
}

// TagList splits Tags on commas, dropping empty entries.
func (b Bookmark) TagList() []string {
	return SplitTags(b.Tags)
}

// SplitTags splits a comma separated tag string, trimming every entry.
func SplitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Tag is a tag name with the number of bookmarks carrying it.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// BookmarkID returns the synthetic command id for a bookmark index.
func BookmarkID(index int) string {
	return BookmarkIDPrefix + strconv.Itoa(index)
}

// BookmarkCommand maps a bookmark snapshot into a launcher command.
func BookmarkCommand(b Bookmark) Command {
	name := b.Title
	if name == "" {
		name = b.URI
	}

	desc := b.URI
	if b.Tags != "" {
		desc = b.URI + " • " + b.Tags
	}

	keywords := make([]string, 0, 4)
	for _, k := range []string{b.Title, b.URI, b.Tags, b.Description} {
		if k != "" {
			keywords = append(keywords, k)
		}
	}

	return Command{
		ID:          BookmarkID(b.Index),
		Name:        name,
		Description: desc,
		Icon:        IconBookmark,
		Group:       BookmarkGroup,
		Keywords:    keywords,
		Action:      URLAction{URL: b.URI},
	}
}

// BookmarkCommands maps every snapshot, keeping store order.
func BookmarkCommands(bookmarks []Bookmark) []Command {
	out := make([]Command, 0, len(bookmarks))
	for _, b := range bookmarks {
		out = append(out, BookmarkCommand(b))
	}
	return out
}
