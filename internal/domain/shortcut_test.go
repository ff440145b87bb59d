package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDetectConflicts(t *testing.T) {
	superSpace := Hotkey{Modifiers: []Modifier{ModSuper}, Key: "Space"}

	tests := []struct {
		name  string
		rules []ShortcutRule
		want  map[string][]string
	}{
		{
			name:  "defaults have no conflicts",
			rules: DefaultShortcuts(),
			want:  map[string][]string{},
		},
		{
			name: "custom collides with toggle window",
			rules: append(DefaultShortcuts(), ShortcutRule{
				ID: "custom-1", Type: ShortcutGlobal, Context: ContextAll,
				Hotkey: superSpace, Action: "open-term", Enabled: true, IsCustom: true,
			}),
			want: map[string][]string{"Super+Space": {ShortcutToggleWindow, "custom-1"}},
		},
		{
			name: "disabled rule ignored",
			rules: append(DefaultShortcuts(), ShortcutRule{
				ID: "custom-1", Type: ShortcutGlobal, Context: ContextAll,
				Hotkey: superSpace, Enabled: false,
			}),
			want: map[string][]string{},
		},
		{
			name: "modifier order does not hide a conflict",
			rules: []ShortcutRule{
				{ID: "a", Hotkey: Hotkey{Modifiers: []Modifier{ModShift, ModControl}, Key: "K"}, Enabled: true},
				{ID: "b", Hotkey: Hotkey{Modifiers: []Modifier{ModControl, ModShift}, Key: "K"}, Enabled: true},
				{ID: "c", Hotkey: Hotkey{Modifiers: []Modifier{ModControl}, Key: "K"}, Enabled: true},
			},
			want: map[string][]string{"Control+Shift+K": {"a", "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectConflicts(tt.rules)
			if len(got) != len(tt.want) {
				t.Fatalf("DetectConflicts() = %v, want %v", got, tt.want)
			}
			for key, ids := range tt.want {
				gotIDs, ok := got[key]
				if !ok {
					t.Fatalf("missing conflict group %q in %v", key, got)
				}
				if len(gotIDs) != len(ids) {
					t.Fatalf("group %q = %v, want %v", key, gotIDs, ids)
				}
				for i := range ids {
					if gotIDs[i] != ids[i] {
						t.Errorf("group %q[%d] = %q, want %q", key, i, gotIDs[i], ids[i])
					}
				}
			}
		})
	}
}

func TestShortcutRuleValidate(t *testing.T) {
	valid := DefaultShortcuts()[0]

	tests := []struct {
		name    string
		mutate  func(r *ShortcutRule)
		wantErr error
	}{
		{"valid", func(r *ShortcutRule) {}, nil},
		{"empty id", func(r *ShortcutRule) { r.ID = "" }, ErrEmptyShortcutID},
		{"bad type", func(r *ShortcutRule) { r.Type = "os" }, ErrInvalidShortcutType},
		{"bad context", func(r *ShortcutRule) { r.Context = "desktop" }, ErrInvalidShortcutContext},
		{"bad hotkey", func(r *ShortcutRule) { r.Hotkey.Key = "" }, ErrEmptyKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid.Clone()
			tt.mutate(&r)
			err := r.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestShortcutRuleUnmarshalDefaults(t *testing.T) {
	data := `{"id":"custom-1","type":"command","context":"launcher","hotkey":{"key":"F2"},"description":"x","action":"rename"}`

	var r ShortcutRule
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !r.Enabled {
		t.Error("missing enabled should default to true")
	}
	if r.IsCustom {
		t.Error("missing isCustom should default to false")
	}
	if r.Hotkey.Key != "F2" || len(r.Hotkey.Modifiers) != 0 {
		t.Errorf("Hotkey = %+v", r.Hotkey)
	}

	if err := json.Unmarshal([]byte(`{"id":"x","enabled":false}`), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if r.Enabled {
		t.Error("explicit enabled=false should be kept")
	}
}

func TestShortcutConfigValidate(t *testing.T) {
	cfg := DefaultShortcutConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg.ConflictResolution = "ignore"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidResolution) {
		t.Errorf("Validate() = %v, want ErrInvalidResolution", err)
	}

	cfg = DefaultShortcutConfig()
	cfg.Shortcuts[2].Hotkey.Modifiers = []Modifier{"Hyper"}
	if err := cfg.Validate(); !errors.Is(err, ErrUnknownModifier) {
		t.Errorf("Validate() = %v, want ErrUnknownModifier", err)
	}
}

func TestDefaultShortcutsAreFreshCopies(t *testing.T) {
	a := DefaultShortcuts()
	a[0].Hotkey.Key = "X"
	a[0].Hotkey.Modifiers[0] = ModAlt

	b := DefaultShortcuts()
	if b[0].Hotkey.String() != "Super+Space" {
		t.Errorf("DefaultShortcuts() leaked a mutation: %q", b[0].Hotkey.String())
	}
}

func TestGlobalBindings(t *testing.T) {
	rules := append(DefaultShortcuts(),
		ShortcutRule{ID: "custom-1", Type: ShortcutGlobal, Hotkey: Hotkey{Modifiers: []Modifier{ModAlt}, Key: "T"}, Action: "term", Enabled: true},
		ShortcutRule{ID: "custom-2", Type: ShortcutGlobal, Hotkey: Hotkey{Key: "F9"}, Action: "off", Enabled: false},
	)

	got := GlobalBindings(rules)
	if len(got) != 2 {
		t.Fatalf("GlobalBindings() = %v, want 2 bindings", got)
	}
	if got[0] != (GlobalBinding{ID: ShortcutToggleWindow, Hotkey: "Super+Space", Action: "toggle-window"}) {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].ID != "custom-1" || got[1].Hotkey != "Alt+T" {
		t.Errorf("got[1] = %+v", got[1])
	}
}
