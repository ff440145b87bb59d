package store

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
)

func TestDecodeShortcuts(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantNil bool
		wantErr bool
		wantLen int
	}{
		{name: "empty", doc: "", wantNil: true},
		{name: "no member", doc: `{"setupCompleted": true}`, wantNil: true},
		{name: "null member", doc: `{"shortcuts": null}`, wantNil: true},
		{name: "broken", doc: `[1,2`, wantErr: true},
		{
			name:    "enabled defaults to true",
			doc:     `{"shortcuts": {"shortcuts": [{"id": "custom-1", "type": "command", "context": "all", "hotkey": {"key": "F2"}}], "conflictResolution": "warn"}}`,
			wantLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := DecodeShortcuts([]byte(tt.doc))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeShortcuts() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.wantNil {
				if cfg != nil {
					t.Errorf("DecodeShortcuts() = %+v, want nil", cfg)
				}
				return
			}
			if len(cfg.Shortcuts) != tt.wantLen {
				t.Fatalf("len(Shortcuts) = %d, want %d", len(cfg.Shortcuts), tt.wantLen)
			}
			if !cfg.Shortcuts[0].Enabled {
				t.Error("missing enabled should decode as true")
			}
		})
	}
}

func TestMergeShortcutsPreservesMembers(t *testing.T) {
	doc := []byte(`{"setupCompleted": true, "customFolders": [], "hiddenSystemFolders": ["system-music"], "window": {"w": 640}}`)

	out, err := MergeShortcuts(doc, domain.DefaultShortcutConfig())
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]json.RawMessage
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"setupCompleted", "customFolders", "hiddenSystemFolders", "window", "shortcuts"} {
		if _, ok := got[key]; !ok {
			t.Errorf("member %q missing after merge", key)
		}
	}

	prefs, err := DecodePreferences(out)
	if err != nil {
		t.Fatal(err)
	}
	if !prefs.SetupCompleted || !prefs.IsHidden("system-music") {
		t.Errorf("preferences changed: %+v", prefs)
	}
	if prefs.Shortcuts == nil || prefs.Shortcuts.ConflictResolution != domain.ResolutionWarn {
		t.Errorf("shortcuts member = %+v", prefs.Shortcuts)
	}
}

func TestMergeRejectsNonObject(t *testing.T) {
	if _, err := MergeShortcuts([]byte(`"hello"`), domain.DefaultShortcutConfig()); err == nil {
		t.Error("merging into a non-object should fail")
	}
}

func TestMergePreferencesLeavesShortcuts(t *testing.T) {
	doc, err := MergeShortcuts(nil, domain.DefaultShortcutConfig())
	if err != nil {
		t.Fatal(err)
	}
	out, err := MergePreferences(doc, domain.Preferences{SetupCompleted: true})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := DecodeShortcuts(out)
	if err != nil || cfg == nil {
		t.Fatalf("DecodeShortcuts() = %v, %v", cfg, err)
	}
	if len(cfg.Shortcuts) != len(domain.DefaultShortcuts()) {
		t.Errorf("shortcuts changed: %d", len(cfg.Shortcuts))
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		malformed bool
	}{
		{name: "empty", doc: ""},
		{name: "object", doc: `{"setupCompleted": true}`},
		{name: "null", doc: "null"},
		{name: "broken", doc: "{not json", malformed: true},
		{name: "array", doc: `[1, 2]`, malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check([]byte(tt.doc))
			if got := errors.Is(err, ErrMalformed); got != tt.malformed {
				t.Errorf("Check() error = %v, malformed = %v, want %v", err, got, tt.malformed)
			}
		})
	}
}
