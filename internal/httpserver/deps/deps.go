package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/mrunner/internal/bookmarks"
	"github.com/MrSnakeDoc/mrunner/internal/hotkeys"
	"github.com/MrSnakeDoc/mrunner/internal/index"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
	"github.com/MrSnakeDoc/mrunner/internal/palette"
	"github.com/MrSnakeDoc/mrunner/internal/runner"
	"github.com/MrSnakeDoc/mrunner/internal/search"
	"github.com/MrSnakeDoc/mrunner/internal/shortcuts"
	"github.com/MrSnakeDoc/mrunner/internal/sources/apps"
)

// UsageRecorder counts command runs. Only the redis backend has one.
type UsageRecorder interface {
	IncrementUsage(ctx context.Context, commandID string) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	AllowedHosts []string // Host headers allowed to reach the API
	AllowedCIDRS []string // client networks allowed to reach the API
	TrustProxy   bool     // true if forwarding headers can be trusted

	Catalog   *index.Catalog    // every launcher candidate
	Filter    *search.Filter    // fuzzy ranking over the catalog
	Session   *palette.Session  // the launcher's debounced query session
	Shortcuts *shortcuts.Store  // shortcut rules
	Bookmarks *bookmarks.Store  // nil when the bookmark database is disabled
	Runner    *runner.Runner    // command execution
	Hotkeys   *hotkeys.Registry // global hotkeys
	Folders   *apps.Folders     // quick-access folders
	Usage     UsageRecorder     // nil without redis
	Redis     *redis.Client     // nil with the file backend

	ReloadTrigger chan struct{} // Channel to trigger a manual plugin reload

	// FoldersChanged rebuilds the compiled-in commands after a folder edit.
	FoldersChanged func(ctx context.Context)
}
