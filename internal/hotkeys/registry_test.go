package hotkeys

import (
	"context"
	"errors"
	"testing"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
)

func TestSync(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	ctx := context.Background()

	err := r.Sync(ctx, []domain.GlobalBinding{
		{ID: domain.ShortcutToggleWindow, Hotkey: "Super+Space", Action: "toggle-window"},
		{ID: "custom-1", Hotkey: "Hyper+Control+T", Action: "terminal"},
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	got := r.Registered()
	if len(got) != 2 {
		t.Fatalf("Registered() = %+v", got)
	}
	if got[0].Label != "Super+Space" {
		t.Errorf("label = %q", got[0].Label)
	}
	if got[1].Label != "Control+T" {
		t.Errorf("unknown modifier should be dropped, label = %q", got[1].Label)
	}

	if err := r.Sync(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if len(r.Registered()) != 0 {
		t.Error("Sync(nil) should clear every binding")
	}
}

func TestSyncStopsAtInvalid(t *testing.T) {
	r := NewRegistry(logger.NewNop())

	err := r.Sync(context.Background(), []domain.GlobalBinding{
		{ID: "a", Hotkey: "Alt+A", Action: "a"},
		{ID: "b", Hotkey: "Control+", Action: "b"},
		{ID: "c", Hotkey: "Alt+C", Action: "c"},
	})
	if !errors.Is(err, ErrInvalidHotkey) {
		t.Fatalf("Sync() error = %v, want ErrInvalidHotkey", err)
	}

	got := r.Registered()
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Registered() = %+v, want only the bindings before the bad one", got)
	}
}

func TestTrigger(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	ctx := context.Background()

	toggled := 0
	r.Handle("toggle-window", func(context.Context) error {
		toggled++
		return nil
	})
	if err := r.Sync(ctx, []domain.GlobalBinding{
		{ID: domain.ShortcutToggleWindow, Hotkey: "Super+Space", Action: "toggle-window"},
		{ID: "custom-1", Hotkey: "Alt+Shift+T", Action: "terminal"},
	}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		hotkey  string
		want    bool
		wantErr bool
	}{
		{"bound with handler", "Super+Space", true, false},
		{"modifier order ignored", "Shift+Alt+T", true, false},
		{"not bound", "Control+Q", false, false},
		{"unparsable", "+", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Trigger(ctx, tt.hotkey)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Trigger() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Trigger(%q) = %v, want %v", tt.hotkey, got, tt.want)
			}
		})
	}
	if toggled != 1 {
		t.Errorf("toggle handler ran %d times", toggled)
	}
}
