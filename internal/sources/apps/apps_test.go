package apps

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
)

type memPrefs struct {
	prefs   domain.Preferences
	readErr error
	saves   int
}

func (m *memPrefs) Preferences(ctx context.Context) (*domain.Preferences, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	p := m.prefs
	p.CustomFolders = append([]domain.FolderConfig(nil), m.prefs.CustomFolders...)
	p.HiddenSystemFolders = append([]string(nil), m.prefs.HiddenSystemFolders...)
	return &p, nil
}

func (m *memPrefs) SavePreferences(ctx context.Context, p domain.Preferences) error {
	m.prefs = p
	m.saves++
	return nil
}

func newTestFolders(prefs *memPrefs, present ...string) *Folders {
	f, _ := NewFolders(prefs, "/home/me")
	set := map[string]bool{}
	for _, p := range present {
		set[filepath.Join("/home/me", p)] = true
	}
	f.exists = func(path string) bool { return set[path] }
	return f
}

func TestApplications(t *testing.T) {
	linux := Applications("linux")
	if len(linux) != 3 || linux[0].Name != "Chrome - Gaio" {
		t.Errorf("linux applications = %+v", linux)
	}
	for _, c := range linux {
		if c.Group != GroupApplications {
			t.Errorf("%s group = %q", c.ID, c.Group)
		}
		if _, ok := c.Action.(domain.ShellAction); !ok {
			t.Errorf("%s action = %T", c.ID, c.Action)
		}
	}
	if got := Applications("darwin"); len(got) != 1 || got[0].ID != "app-code" {
		t.Errorf("darwin applications = %+v", got)
	}
}

func TestSystemFolders(t *testing.T) {
	f := newTestFolders(&memPrefs{}, "Downloads", "Projects")

	got := f.System()
	if len(got) != 2 {
		t.Fatalf("System() = %+v", got)
	}
	if got[0].ID != "system-downloads" || got[0].Path != "/home/me/Downloads" || !got[0].IsSystem {
		t.Errorf("first folder = %+v", got[0])
	}
	if got[1].Icon != domain.IconCode {
		t.Errorf("projects icon = %q", got[1].Icon)
	}
}

func TestFolderLifecycle(t *testing.T) {
	prefs := &memPrefs{}
	f := newTestFolders(prefs, "Downloads", "Music")
	ctx := context.Background()

	added, err := f.Add(ctx, "Notes", "~/notes", "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(added.ID, CustomFolderPrefix) || added.Icon != domain.IconFolder {
		t.Errorf("added = %+v", added)
	}

	if err := f.SetHidden(ctx, "system-music", true); err != nil {
		t.Fatal(err)
	}
	list, err := f.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, l := range list {
		ids = append(ids, l.ID)
	}
	if len(ids) != 2 || ids[0] != "system-downloads" || ids[1] != added.ID {
		t.Errorf("List() ids = %v", ids)
	}

	if err := f.SetHidden(ctx, "system-music", false); err != nil {
		t.Fatal(err)
	}
	if len(prefs.prefs.HiddenSystemFolders) != 0 {
		t.Errorf("hidden = %v", prefs.prefs.HiddenSystemFolders)
	}

	if err := f.Remove(ctx, added.ID); err != nil {
		t.Fatal(err)
	}
	if len(prefs.prefs.CustomFolders) != 0 {
		t.Errorf("custom folders = %+v", prefs.prefs.CustomFolders)
	}
}

func TestFolderErrors(t *testing.T) {
	prefs := &memPrefs{}
	f := newTestFolders(prefs, "Downloads")
	ctx := context.Background()

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{"add without name", func() error { _, err := f.Add(ctx, " ", "/x", ""); return err }, ErrInvalidFolder},
		{"add with unknown icon", func() error { _, err := f.Add(ctx, "X", "/x", "rocket"); return err }, ErrInvalidFolder},
		{"remove system", func() error { return f.Remove(ctx, "system-downloads") }, ErrSystemFolder},
		{"remove unknown", func() error { return f.Remove(ctx, "folder-nope") }, ErrFolderNotFound},
		{"hide unknown", func() error { return f.SetHidden(ctx, "system-videos", true) }, ErrFolderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if prefs.saves != 0 {
		t.Errorf("failed operations saved %d times", prefs.saves)
	}
}

func TestSourceCommands(t *testing.T) {
	prefs := &memPrefs{prefs: domain.Preferences{
		CustomFolders: []domain.FolderConfig{{ID: "folder-1", Name: "Notes", Path: "~/notes", Icon: domain.IconFileText}},
	}}
	src := NewSource(newTestFolders(prefs, "Downloads"), "linux", logger.NewNop())

	cmds := src.Commands(context.Background())
	if len(cmds) != 2+3+2 {
		t.Fatalf("Commands() = %d commands", len(cmds))
	}
	if cmds[0].ID != "folder-system-downloads" || cmds[0].Group != GroupQuickAccess {
		t.Errorf("first command = %+v", cmds[0])
	}
	if a, ok := cmds[1].Action.(domain.OpenAction); !ok || a.Path != "~/notes" || cmds[1].ID != "folder-1" {
		t.Errorf("custom folder command = %+v", cmds[1])
	}
	if _, ok := cmds[len(cmds)-1].Action.(domain.DialogAction); !ok {
		t.Errorf("last command = %+v, want a dialog", cmds[len(cmds)-1])
	}

	prefs.readErr = errors.New("corrupt")
	cmds = src.Commands(context.Background())
	if len(cmds) != 1+3+2 {
		t.Errorf("fallback Commands() = %d commands", len(cmds))
	}
}
