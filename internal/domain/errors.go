package domain

import "errors"

var (
	ErrEmptyKey        = errors.New("hotkey key is empty")
	ErrKeyTooLong      = errors.New("hotkey key is too long")
	ErrKeyIsModifier   = errors.New("hotkey key is a modifier")
	ErrUnknownModifier = errors.New("unknown hotkey modifier")

	ErrInvalidShortcutType    = errors.New("invalid shortcut type")
	ErrInvalidShortcutContext = errors.New("invalid shortcut context")
	ErrInvalidResolution      = errors.New("invalid conflict resolution")
	ErrEmptyShortcutID        = errors.New("shortcut id is empty")
)
