package handlers

import (
	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/search"
)

// commandView is the wire form of a launcher row. Callbacks stay on the
// server; the UI only sees the action kind and its data.
type commandView struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	Icon          domain.Icon         `json:"icon,omitempty"`
	Group         string              `json:"group,omitempty"`
	Keywords      []string            `json:"keywords,omitempty"`
	Shortcut      string              `json:"shortcut,omitempty"`
	Action        domain.ActionKind   `json:"action"`
	Target        string              `json:"target,omitempty"`
	Dialog        domain.DialogKind   `json:"dialog,omitempty"`
	Bookmark      *domain.Bookmark    `json:"bookmark,omitempty"`
	Commands      []commandView       `json:"commands,omitempty"`
	CloseAfterRun bool                `json:"closeAfterRun"`
	Score         float64             `json:"score,omitempty"`
	Matches       []search.FieldMatch `json:"matches,omitempty"`
}

func viewCommand(c domain.Command) commandView {
	v := commandView{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		Icon:          c.Icon,
		Group:         c.Group,
		Keywords:      c.Keywords,
		Shortcut:      c.Shortcut,
		CloseAfterRun: c.ShouldClose(),
	}
	if c.Action == nil {
		return v
	}
	v.Action = c.Action.Kind()

	switch a := c.Action.(type) {
	case domain.ShellAction:
		v.Target = a.Command
	case domain.OpenAction:
		v.Target = a.Path
	case domain.URLAction:
		v.Target = a.URL
	case domain.InputAction:
		v.Target = a.Placeholder
	case domain.DialogAction:
		v.Dialog = a.Dialog
		v.Bookmark = a.Bookmark
	case domain.SubmenuAction:
		for _, sub := range a.Commands {
			v.Commands = append(v.Commands, viewCommand(sub))
		}
	}
	return v
}

func viewRows(rows []search.Ranked) []commandView {
	out := make([]commandView, 0, len(rows))
	for _, r := range rows {
		v := viewCommand(r.Command)
		v.Score = r.Score
		v.Matches = r.Matches
		out = append(out, v)
	}
	return out
}

type rowsResponse struct {
	Query string        `json:"query"`
	Count int           `json:"count"`
	Rows  []commandView `json:"rows"`
}

func newRows(query string, rows []search.Ranked) rowsResponse {
	views := viewRows(rows)
	return rowsResponse{Query: query, Count: len(views), Rows: views}
}
