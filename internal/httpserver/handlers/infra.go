package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Loaded     *int   `json:"loaded,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode         string                     `json:"mode"`
	IndexVersion uint64                     `json:"index_version"`
	Components   map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commands := d.Catalog.CommandCount()
		plugins := d.Catalog.PluginCount()
		bookmarks := d.Catalog.BookmarkCount()
		rules := len(d.Shortcuts.Rules())

		components := map[string]componentStatus{
			"commands": {OK: commands > 0, Loaded: &commands},
			"plugins": {
				OK:         true,
				Loaded:     &plugins,
				LastReload: formatTime(d.Catalog.GetLastPluginReload()),
			},
			"bookmarks": checkBookmarks(r.Context(), d, &bookmarks),
			"shortcuts": checkShortcuts(d, &rules),
			"redis":     checkRedis(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:         determineMode(components),
			IndexVersion: d.Filter.Version(),
			Components:   components,
		})
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("2006-01-02 15:04:05")
}

// determineMode is "critical" without commands, "degraded" when any
// optional component is down, "ok" otherwise.
func determineMode(components map[string]componentStatus) string {
	if c, ok := components["commands"]; ok && !c.OK {
		return "critical"
	}
	for _, c := range components {
		if !c.OK {
			return "degraded"
		}
	}
	return "ok"
}

func checkBookmarks(ctx context.Context, d deps.Deps, loaded *int) componentStatus {
	if d.Bookmarks == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := d.Bookmarks.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Impact: "bookmark-search-disabled",
			Error:  err.Error(),
		}
	}
	return componentStatus{
		OK:         true,
		Loaded:     loaded,
		LastReload: formatTime(d.Catalog.GetLastBookmarkUpdate()),
	}
}

func checkShortcuts(d deps.Deps, loaded *int) componentStatus {
	if !d.Shortcuts.Persisted() {
		return componentStatus{OK: true, Loaded: loaded, Mode: "defaults"}
	}
	return componentStatus{OK: true, Loaded: loaded, Mode: string(d.Shortcuts.ConflictResolution())}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.Redis == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := d.Redis.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "preferences-unavailable",
			Error:  "timeout",
		}
	}
	return componentStatus{OK: true, Mode: "optimal"}
}
