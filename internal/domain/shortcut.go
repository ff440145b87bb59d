package domain

import (
	"encoding/json"
	"fmt"
)

type ShortcutType string

const (
	ShortcutGlobal   ShortcutType = "global"
	ShortcutInternal ShortcutType = "internal"
	ShortcutCommand  ShortcutType = "command"
)

func (t ShortcutType) Valid() bool {
	switch t {
	case ShortcutGlobal, ShortcutInternal, ShortcutCommand:
		return true
	}
	return false
}

type ShortcutContext string

const (
	ContextLauncher ShortcutContext = "launcher"
	ContextSettings ShortcutContext = "settings"
	ContextAll      ShortcutContext = "all"
)

func (c ShortcutContext) Valid() bool {
	switch c {
	case ContextLauncher, ContextSettings, ContextAll:
		return true
	}
	return false
}

// ConflictResolution tells the settings UI how to treat a conflicting
// binding. The store itself only reports conflicts.
type ConflictResolution string

const (
	ResolutionWarn     ConflictResolution = "warn"
	ResolutionBlock    ConflictResolution = "block"
	ResolutionOverride ConflictResolution = "override"
	// ResolutionAllow is written by older preference files.
	ResolutionAllow ConflictResolution = "allow"
)

func (r ConflictResolution) Valid() bool {
	switch r {
	case ResolutionWarn, ResolutionBlock, ResolutionOverride, ResolutionAllow:
		return true
	}
	return false
}

// Built-in rule ids.
const (
	ShortcutToggleWindow   = "global-toggle-window"
	ShortcutEscape         = "internal-escape"
	ShortcutEditBookmark   = "internal-edit-bookmark"
	ShortcutDeleteBookmark = "internal-delete-bookmark"

	CustomShortcutPrefix = "custom-"
)

// ShortcutRule binds a hotkey to an action tag.
type ShortcutRule struct {
	ID          string          `json:"id"`
	Type        ShortcutType    `json:"type"`
	Context     ShortcutContext `json:"context"`
	Hotkey      Hotkey          `json:"hotkey"`
	Description string          `json:"description"`
	Action      string          `json:"action"`
	Enabled     bool            `json:"enabled"`
	IsCustom    bool            `json:"isCustom"`
}

// Validate checks the rule against the shortcut enumerations.
func (r ShortcutRule) Validate() error {
	if r.ID == "" {
		return ErrEmptyShortcutID
	}
	if !r.Type.Valid() {
		return fmt.Errorf("rule %s: %w: %q", r.ID, ErrInvalidShortcutType, r.Type)
	}
	if !r.Context.Valid() {
		return fmt.Errorf("rule %s: %w: %q", r.ID, ErrInvalidShortcutContext, r.Context)
	}
	if err := r.Hotkey.Validate(); err != nil {
		return fmt.Errorf("rule %s: %w", r.ID, err)
	}
	return nil
}

// Clone returns a deep copy so callers cannot alias the modifier slice.
func (r ShortcutRule) Clone() ShortcutRule {
	c := r
	c.Hotkey = r.Hotkey.Clone()
	return c
}

// ShortcutConfig is the persisted shortcut document.
type ShortcutConfig struct {
	Shortcuts          []ShortcutRule     `json:"shortcuts"`
	ConflictResolution ConflictResolution `json:"conflictResolution"`
}

// Validate validates every rule. One bad rule invalidates the document.
func (c ShortcutConfig) Validate() error {
	if c.ConflictResolution != "" && !c.ConflictResolution.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidResolution, c.ConflictResolution)
	}
	for _, r := range c.Shortcuts {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DefaultShortcuts returns a fresh copy of the compiled-in rule table.
func DefaultShortcuts() []ShortcutRule {
	return []ShortcutRule{
		{
			ID:          ShortcutToggleWindow,
			Type:        ShortcutGlobal,
			Context:     ContextAll,
			Hotkey:      Hotkey{Modifiers: []Modifier{ModSuper}, Key: "Space"},
			Description: "Toggle launcher window",
			Action:      "toggle-window",
			Enabled:     true,
		},
		{
			ID:          ShortcutEscape,
			Type:        ShortcutInternal,
			Context:     ContextLauncher,
			Hotkey:      Hotkey{Modifiers: []Modifier{}, Key: "Escape"},
			Description: "Close launcher",
			Action:      "escape",
			Enabled:     true,
		},
		{
			ID:          ShortcutEditBookmark,
			Type:        ShortcutInternal,
			Context:     ContextLauncher,
			Hotkey:      Hotkey{Modifiers: []Modifier{ModControl}, Key: "e"},
			Description: "Edit selected bookmark",
			Action:      "edit-bookmark",
			Enabled:     true,
		},
		{
			ID:          ShortcutDeleteBookmark,
			Type:        ShortcutInternal,
			Context:     ContextLauncher,
			Hotkey:      Hotkey{Modifiers: []Modifier{ModControl}, Key: "d"},
			Description: "Delete selected bookmark",
			Action:      "delete-bookmark",
			Enabled:     true,
		},
	}
}

// DefaultShortcutConfig is the document used when nothing valid is persisted.
func DefaultShortcutConfig() ShortcutConfig {
	return ShortcutConfig{
		Shortcuts:          DefaultShortcuts(),
		ConflictResolution: ResolutionWarn,
	}
}

// DefaultShortcut looks up the compiled-in rule for id.
func DefaultShortcut(id string) (ShortcutRule, bool) {
	for _, r := range DefaultShortcuts() {
		if r.ID == id {
			return r, true
		}
	}
	return ShortcutRule{}, false
}

// DetectConflicts groups enabled rules by canonical serialized hotkey and
// keeps the groups with two or more members. Ids keep collection order.
func DetectConflicts(rules []ShortcutRule) map[string][]string {
	groups := make(map[string][]string)
	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		key := r.Hotkey.Canonical().String()
		groups[key] = append(groups[key], r.ID)
	}

	conflicts := make(map[string][]string)
	for key, ids := range groups {
		if len(ids) > 1 {
			conflicts[key] = ids
		}
	}
	return conflicts
}

// GlobalBinding is what gets pushed to the OS hotkey registration.
type GlobalBinding struct {
	ID     string `json:"id"`
	Hotkey string `json:"hotkey"`
	Action string `json:"action"`
}

// GlobalBindings selects the enabled global rules.
func GlobalBindings(rules []ShortcutRule) []GlobalBinding {
	var out []GlobalBinding
	for _, r := range rules {
		if r.Type != ShortcutGlobal || !r.Enabled {
			continue
		}
		out = append(out, GlobalBinding{ID: r.ID, Hotkey: r.Hotkey.String(), Action: r.Action})
	}
	return out
}

// UnmarshalJSON defaults a missing "enabled" to true.
func (r *ShortcutRule) UnmarshalJSON(data []byte) error {
	type alias ShortcutRule
	aux := struct {
		*alias
		Enabled *bool `json:"enabled"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Enabled = aux.Enabled == nil || *aux.Enabled
	return nil
}
