package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
)

// Catalog holds every launcher candidate source in memory: compiled-in
// commands, plugin commands and the latest bookmark snapshot.
// Every replacement advances Version, which is how the fuzzy filter knows
// to rebuild.
type Catalog struct {
	mu sync.RWMutex

	version   uint64
	commands  []domain.Command
	plugins   []domain.Command
	bookmarks []domain.Bookmark
	bmCmds    []domain.Command

	lastPluginReload   time.Time
	lastBookmarkUpdate time.Time
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{}
}

// UpdateCommands replaces the built-in commands
func (c *Catalog) UpdateCommands(commands []domain.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.commands = append([]domain.Command(nil), commands...)
	c.version++
}

// UpdatePlugins replaces the plugin commands
func (c *Catalog) UpdatePlugins(commands []domain.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.plugins = append([]domain.Command(nil), commands...)
	c.lastPluginReload = time.Now()
	c.version++
}

// UpdateBookmarks replaces the bookmark snapshot
func (c *Catalog) UpdateBookmarks(bookmarks []domain.Bookmark) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bookmarks = append([]domain.Bookmark(nil), bookmarks...)
	c.bmCmds = domain.BookmarkCommands(c.bookmarks)
	c.lastBookmarkUpdate = time.Now()
	c.version++
}

// Version returns the current candidate list version
func (c *Catalog) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.version
}

// Candidates returns a snapshot of every candidate, bookmarks first, then
// commands, then plugins, together with the version it belongs to.
func (c *Catalog) Candidates() (uint64, []domain.Command) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Command, 0, len(c.bmCmds)+len(c.commands)+len(c.plugins))
	out = append(out, c.bmCmds...)
	out = append(out, c.commands...)
	out = append(out, c.plugins...)
	return c.version, out
}

// Get looks up a candidate by id, descending into submenus
func (c *Catalog) Get(id string) (domain.Command, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, list := range [][]domain.Command{c.bmCmds, c.commands, c.plugins} {
		if cmd, ok := find(list, id); ok {
			return cmd, true
		}
	}
	return domain.Command{}, false
}

func find(list []domain.Command, id string) (domain.Command, bool) {
	for _, cmd := range list {
		if cmd.ID == id {
			return cmd, true
		}
		if sub, ok := cmd.Action.(domain.SubmenuAction); ok {
			if found, ok := find(sub.Commands, id); ok {
				return found, true
			}
		}
	}
	return domain.Command{}, false
}

// Bookmarks returns the current bookmark snapshot
func (c *Catalog) Bookmarks() []domain.Bookmark {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]domain.Bookmark(nil), c.bookmarks...)
}

// Bookmark looks up a bookmark snapshot by store index
func (c *Catalog) Bookmark(index int) (domain.Bookmark, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, b := range c.bookmarks {
		if b.Index == index {
			return b, true
		}
	}
	return domain.Bookmark{}, false
}

// CommandCount returns the number of built-in commands
func (c *Catalog) CommandCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.commands)
}

// PluginCount returns the number of plugin commands
func (c *Catalog) PluginCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.plugins)
}

// BookmarkCount returns the number of bookmarks in the snapshot
func (c *Catalog) BookmarkCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.bookmarks)
}

// GetLastPluginReload returns the timestamp of the last plugin reload
func (c *Catalog) GetLastPluginReload() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastPluginReload
}

// GetLastBookmarkUpdate returns the timestamp of the last bookmark snapshot
func (c *Catalog) GetLastBookmarkUpdate() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastBookmarkUpdate
}
