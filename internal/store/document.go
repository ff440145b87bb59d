// Package store holds the preference document codec shared by the file and
// redis backends.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
)

const shortcutsMember = "shortcuts"

// ErrMalformed marks a stored document that is not a JSON object.
var ErrMalformed = errors.New("malformed preferences document")

// Check reports whether data can be merged into. An empty document is fine.
func Check(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	_, err := members(data)
	return err
}

// DecodePreferences decodes a preference document. An empty document is
// the zero value.
func DecodePreferences(data []byte) (*domain.Preferences, error) {
	var prefs domain.Preferences
	if len(data) == 0 {
		return &prefs, nil
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w: %w", ErrMalformed, err)
	}
	return &prefs, nil
}

// DecodeShortcuts extracts the shortcut member. It returns nil, nil when the
// document or the member is absent.
func DecodeShortcuts(data []byte) (*domain.ShortcutConfig, error) {
	if len(data) == 0 {
		return nil, nil
	}
	doc, err := members(data)
	if err != nil {
		return nil, err
	}
	raw, ok := doc[shortcutsMember]
	if !ok || string(raw) == "null" {
		return nil, nil
	}

	var cfg domain.ShortcutConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode shortcuts: %w", err)
	}
	return &cfg, nil
}

// MergeShortcuts replaces the shortcut member of data and keeps every other
// member as it was. data may be empty.
func MergeShortcuts(data []byte, cfg domain.ShortcutConfig) ([]byte, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode shortcuts: %w", err)
	}
	return merge(data, map[string]json.RawMessage{shortcutsMember: raw})
}

// MergePreferences writes the user-facing members of prefs into data. The
// shortcut member is left alone; it belongs to the shortcut store.
func MergePreferences(data []byte, prefs domain.Preferences) ([]byte, error) {
	folders := prefs.CustomFolders
	if folders == nil {
		folders = []domain.FolderConfig{}
	}
	hidden := prefs.HiddenSystemFolders
	if hidden == nil {
		hidden = []string{}
	}

	set := make(map[string]json.RawMessage, 3)
	for key, v := range map[string]any{
		"setupCompleted":      prefs.SetupCompleted,
		"customFolders":       folders,
		"hiddenSystemFolders": hidden,
	} {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", key, err)
		}
		set[key] = raw
	}
	return merge(data, set)
}

func merge(data []byte, set map[string]json.RawMessage) ([]byte, error) {
	doc := map[string]json.RawMessage{}
	if len(data) > 0 {
		var err error
		if doc, err = members(data); err != nil {
			return nil, err
		}
	}
	for k, v := range set {
		doc[k] = v
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode preferences: %w", err)
	}
	return out, nil
}

func members(data []byte) (map[string]json.RawMessage, error) {
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w: %w", ErrMalformed, err)
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}
	return doc, nil
}
