package apps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
)

const (
	SystemFolderPrefix = "system-"
	CustomFolderPrefix = "folder-"
)

var (
	ErrFolderNotFound = errors.New("folder not found")
	ErrSystemFolder   = errors.New("system folders can only be hidden")
	ErrInvalidFolder  = errors.New("folder name and path are required")
)

// PreferenceStore is the part of the preference backend folders use.
type PreferenceStore interface {
	Preferences(ctx context.Context) (*domain.Preferences, error)
	SavePreferences(ctx context.Context, prefs domain.Preferences) error
}

type userDir struct {
	id   string
	name string
	dir  string
	icon domain.Icon
}

// userDirs are looked up under the home directory, in display order.
var userDirs = []userDir{
	{"desktop", "Desktop", "Desktop", domain.IconMonitor},
	{"documents", "Documents", "Documents", domain.IconFileText},
	{"downloads", "Downloads", "Downloads", domain.IconDownload},
	{"music", "Music", "Music", domain.IconMusic},
	{"pictures", "Pictures", "Pictures", domain.IconImage},
	{"videos", "Videos", "Videos", domain.IconVideo},
	{"projects", "Projects", "Projects", domain.IconCode},
}

// SystemFolders returns the user directories that exist under home.
func SystemFolders(home string, exists func(path string) bool) []domain.FolderConfig {
	var out []domain.FolderConfig
	for _, d := range userDirs {
		path := filepath.Join(home, d.dir)
		if !exists(path) {
			continue
		}
		out = append(out, domain.FolderConfig{
			ID:       SystemFolderPrefix + d.id,
			Name:     d.name,
			Path:     path,
			Icon:     d.icon,
			IsSystem: true,
		})
	}
	return out
}

// FolderCommand maps a folder to a quick-access command.
func FolderCommand(f domain.FolderConfig) domain.Command {
	icon := f.Icon
	if !icon.Valid() {
		icon = domain.IconFolder
	}
	return domain.Command{
		ID:          CustomFolderPrefix + strings.TrimPrefix(f.ID, CustomFolderPrefix),
		Name:        f.Name,
		Description: "Open " + f.Path,
		Icon:        icon,
		Group:       GroupQuickAccess,
		Keywords:    []string{strings.ToLower(f.Name), "folder"},
		Action:      domain.OpenAction{Path: f.Path},
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Folders manages the quick-access folder list: system folders the user
// did not hide, then the user's own folders.
type Folders struct {
	mu     sync.Mutex
	prefs  PreferenceStore
	home   string
	exists func(string) bool
}

// NewFolders creates a folder manager. An empty home uses the current
// user's home directory.
func NewFolders(prefs PreferenceStore, home string) (*Folders, error) {
	if home == "" {
		h, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to find home directory: %w", err)
		}
		home = h
	}
	return &Folders{prefs: prefs, home: home, exists: dirExists}, nil
}

// System returns every system folder, hidden or not.
func (f *Folders) System() []domain.FolderConfig {
	return SystemFolders(f.home, f.exists)
}

// List returns the visible folders.
func (f *Folders) List(ctx context.Context) ([]domain.FolderConfig, error) {
	prefs, err := f.prefs.Preferences(ctx)
	if err != nil {
		return nil, err
	}
	return visible(f.System(), prefs), nil
}

func visible(system []domain.FolderConfig, prefs *domain.Preferences) []domain.FolderConfig {
	out := make([]domain.FolderConfig, 0, len(system)+len(prefs.CustomFolders))
	for _, s := range system {
		if !prefs.IsHidden(s.ID) {
			out = append(out, s)
		}
	}
	for _, c := range prefs.CustomFolders {
		if !c.IsSystem {
			out = append(out, c)
		}
	}
	return out
}

// Add stores a user folder and returns it.
func (f *Folders) Add(ctx context.Context, name, path string, icon domain.Icon) (domain.FolderConfig, error) {
	name, path = strings.TrimSpace(name), strings.TrimSpace(path)
	if name == "" || path == "" {
		return domain.FolderConfig{}, ErrInvalidFolder
	}
	if icon == "" {
		icon = domain.IconFolder
	}
	if !icon.Valid() {
		return domain.FolderConfig{}, fmt.Errorf("%w: unknown icon %q", ErrInvalidFolder, icon)
	}

	folder := domain.FolderConfig{
		ID:   CustomFolderPrefix + uuid.NewString(),
		Name: name,
		Path: path,
		Icon: icon,
	}
	err := f.update(ctx, func(p *domain.Preferences) error {
		p.CustomFolders = append(p.CustomFolders, folder)
		return nil
	})
	if err != nil {
		return domain.FolderConfig{}, err
	}
	return folder, nil
}

// Remove deletes a user folder.
func (f *Folders) Remove(ctx context.Context, id string) error {
	if strings.HasPrefix(id, SystemFolderPrefix) {
		return fmt.Errorf("%w: %s", ErrSystemFolder, id)
	}
	return f.update(ctx, func(p *domain.Preferences) error {
		for i, c := range p.CustomFolders {
			if c.ID == id {
				p.CustomFolders = append(p.CustomFolders[:i], p.CustomFolders[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrFolderNotFound, id)
	})
}

// SetHidden hides or shows a system folder.
func (f *Folders) SetHidden(ctx context.Context, id string, hidden bool) error {
	known := false
	for _, s := range f.System() {
		if s.ID == id {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, id)
	}

	return f.update(ctx, func(p *domain.Preferences) error {
		kept := p.HiddenSystemFolders[:0]
		for _, h := range p.HiddenSystemFolders {
			if h != id {
				kept = append(kept, h)
			}
		}
		if hidden {
			kept = append(kept, id)
		}
		p.HiddenSystemFolders = kept
		return nil
	})
}

func (f *Folders) update(ctx context.Context, fn func(p *domain.Preferences) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefs, err := f.prefs.Preferences(ctx)
	if err != nil {
		return err
	}
	if err := fn(prefs); err != nil {
		return err
	}
	if err := f.prefs.SavePreferences(ctx, *prefs); err != nil {
		return fmt.Errorf("failed to save folders: %w", err)
	}
	return nil
}
