package domain

import (
	"encoding/json"
	"strings"
)

// Modifier is one of the fixed modifier tokens a hotkey may carry.
type Modifier string

const (
	ModControl Modifier = "Control"
	ModAlt     Modifier = "Alt"
	ModShift   Modifier = "Shift"
	ModMeta    Modifier = "Meta"
	ModSuper   Modifier = "Super"
)

// Modifiers lists every modifier in declaration order. Canonical hotkeys
// always order their modifiers this way.
var Modifiers = []Modifier{ModControl, ModAlt, ModShift, ModMeta, ModSuper}

// MaxKeyLength bounds the key token of a persisted hotkey.
const MaxKeyLength = 20

func modifierRank(m Modifier) int {
	for i, known := range Modifiers {
		if known == m {
			return i
		}
	}
	return -1
}

// IsModifier reports whether s names a modifier.
func IsModifier(s string) bool {
	return modifierRank(Modifier(s)) >= 0
}

// Hotkey is a modifier set plus exactly one non-modifier key.
type Hotkey struct {
	Modifiers []Modifier `json:"modifiers" yaml:"modifiers"`
	Key       string     `json:"key" yaml:"key"`
}

// String serializes the hotkey with its modifiers in stored order.
// Example: {[Control Shift] K} -> "Control+Shift+K"
func (h Hotkey) String() string {
	parts := make([]string, 0, len(h.Modifiers)+1)
	for _, m := range h.Modifiers {
		parts = append(parts, string(m))
	}
	parts = append(parts, h.Key)
	return strings.Join(parts, "+")
}

// Canonical returns a copy with modifiers de-duplicated and sorted into
// declaration order.
func (h Hotkey) Canonical() Hotkey {
	seen := make([]bool, len(Modifiers))
	for _, m := range h.Modifiers {
		if r := modifierRank(m); r >= 0 {
			seen[r] = true
		}
	}
	mods := make([]Modifier, 0, len(h.Modifiers))
	for i, ok := range seen {
		if ok {
			mods = append(mods, Modifiers[i])
		}
	}
	return Hotkey{Modifiers: mods, Key: h.Key}
}

// Clone copies the modifier slice, keeping nil and empty apart.
func (h Hotkey) Clone() Hotkey {
	if h.Modifiers == nil {
		return h
	}
	mods := make([]Modifier, len(h.Modifiers))
	copy(mods, h.Modifiers)
	return Hotkey{Modifiers: mods, Key: h.Key}
}

// Equal compares canonical serializations.
func (h Hotkey) Equal(other Hotkey) bool {
	return h.Canonical().String() == other.Canonical().String()
}

// Validate checks the invariants a persisted hotkey must hold.
func (h Hotkey) Validate() error {
	if h.Key == "" {
		return ErrEmptyKey
	}
	if len(h.Key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if IsModifier(h.Key) {
		return ErrKeyIsModifier
	}
	for _, m := range h.Modifiers {
		if modifierRank(m) < 0 {
			return ErrUnknownModifier
		}
	}
	return nil
}

// ParseHotkey parses "Control+Shift+K" style strings. Unknown modifier
// tokens are dropped; use ParseHotkeyLenient to learn which ones.
func ParseHotkey(s string) (Hotkey, bool) {
	h, _, ok := ParseHotkeyLenient(s)
	return h, ok
}

// ParseHotkeyLenient is ParseHotkey returning the dropped tokens as well.
// It fails when no key token remains: empty input, a trailing "+", or a
// key token that is itself a modifier name.
func ParseHotkeyLenient(s string) (Hotkey, []string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Hotkey{}, nil, false
	}

	parts := strings.Split(s, "+")
	key := strings.TrimSpace(parts[len(parts)-1])
	if key == "" || IsModifier(key) {
		return Hotkey{}, nil, false
	}

	var (
		mods    []Modifier
		dropped []string
	)
	for _, raw := range parts[:len(parts)-1] {
		tok := strings.TrimSpace(raw)
		if !IsModifier(tok) {
			dropped = append(dropped, tok)
			continue
		}
		if !containsModifier(mods, Modifier(tok)) {
			mods = append(mods, Modifier(tok))
		}
	}

	return Hotkey{Modifiers: mods, Key: key}, dropped, true
}

func containsModifier(mods []Modifier, m Modifier) bool {
	for _, v := range mods {
		if v == m {
			return true
		}
	}
	return false
}

// KeyEvent is the state of a key press as reported by a capture widget.
type KeyEvent struct {
	Ctrl  bool
	Alt   bool
	Shift bool
	Meta  bool
	Key   string
}

// HotkeyFromKeyEvent builds a hotkey from a captured key press. The key is
// kept as reported and the platform meta key maps to Super. Returns false
// while only modifiers are held down.
func HotkeyFromKeyEvent(ev KeyEvent) (Hotkey, bool) {
	if ev.Key == "" || IsModifier(ev.Key) {
		return Hotkey{}, false
	}

	var mods []Modifier
	if ev.Ctrl {
		mods = append(mods, ModControl)
	}
	if ev.Alt {
		mods = append(mods, ModAlt)
	}
	if ev.Shift {
		mods = append(mods, ModShift)
	}
	if ev.Meta {
		mods = append(mods, ModSuper)
	}

	return Hotkey{Modifiers: mods, Key: ev.Key}, true
}

// MarshalJSON always emits a modifiers array, never null.
func (h Hotkey) MarshalJSON() ([]byte, error) {
	mods := h.Modifiers
	if mods == nil {
		mods = []Modifier{}
	}
	return json.Marshal(struct {
		Modifiers []Modifier `json:"modifiers"`
		Key       string     `json:"key"`
	}{mods, h.Key})
}
