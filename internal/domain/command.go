package domain

import (
	"context"
	"strings"
)

// Icon is a display icon tag understood by the launcher UI.
type Icon string

const (
	IconSearch     Icon = "search"
	IconCalculator Icon = "calculator"
	IconGlobe      Icon = "globe"
	IconBookmark   Icon = "bookmark"
	IconClipboard  Icon = "clipboard"
	IconSettings   Icon = "settings"
	IconPower      Icon = "power"
	IconFolder     Icon = "folder"
	IconTerminal   Icon = "terminal"
	IconMusic      Icon = "music"
	IconCode       Icon = "code"
	IconFile       Icon = "file"
	IconHash       Icon = "hash"
	IconCPU        Icon = "cpu"
	IconMonitor    Icon = "monitor"
	IconWifi       Icon = "wifi"
	IconBluetooth  Icon = "bluetooth"
	IconVolume     Icon = "volume"
	IconSun        Icon = "sun"
	IconMoon       Icon = "moon"
	IconDownload   Icon = "download"
	IconFileText   Icon = "file-text"
	IconImage      Icon = "image"
	IconVideo      Icon = "video"
	IconFolderPlus Icon = "folder-plus"
	IconFolderCog  Icon = "folder-cog"
)

var knownIcons = map[Icon]struct{}{
	IconSearch: {}, IconCalculator: {}, IconGlobe: {}, IconBookmark: {},
	IconClipboard: {}, IconSettings: {}, IconPower: {}, IconFolder: {},
	IconTerminal: {}, IconMusic: {}, IconCode: {}, IconFile: {},
	IconHash: {}, IconCPU: {}, IconMonitor: {}, IconWifi: {},
	IconBluetooth: {}, IconVolume: {}, IconSun: {}, IconMoon: {},
	IconDownload: {}, IconFileText: {}, IconImage: {}, IconVideo: {},
	IconFolderPlus: {}, IconFolderCog: {},
}

func (i Icon) Valid() bool {
	_, ok := knownIcons[i]
	return ok
}

type ActionKind string

const (
	ActionShell    ActionKind = "shell"
	ActionOpen     ActionKind = "open"
	ActionURL      ActionKind = "url"
	ActionFunction ActionKind = "function"
	ActionSubmenu  ActionKind = "submenu"
	ActionInput    ActionKind = "input"
	ActionDialog   ActionKind = "dialog"
)

// Action is the payload a command hands to the runner.
type Action interface {
	Kind() ActionKind
}

type ShellAction struct {
	Command string
}

type OpenAction struct {
	Path string
}

type URLAction struct {
	URL string
}

// FunctionAction runs an in-process callback.
type FunctionAction struct {
	Fn func(ctx context.Context) error
}

type SubmenuAction struct {
	Commands []Command
}

// InputAction asks the UI for free text, then calls OnSubmit with it.
type InputAction struct {
	Placeholder string
	OnSubmit    func(ctx context.Context, value string) error
}

type DialogKind string

const (
	DialogBookmarkAdd    DialogKind = "bookmark-add"
	DialogBookmarkEdit   DialogKind = "bookmark-edit"
	DialogBookmarkDelete DialogKind = "bookmark-delete"
	DialogFolderManager  DialogKind = "folder-manager"
)

type DialogAction struct {
	Dialog   DialogKind
	Bookmark *Bookmark
}

func (ShellAction) Kind() ActionKind    { return ActionShell }
func (OpenAction) Kind() ActionKind     { return ActionOpen }
func (URLAction) Kind() ActionKind      { return ActionURL }
func (FunctionAction) Kind() ActionKind { return ActionFunction }
func (SubmenuAction) Kind() ActionKind  { return ActionSubmenu }
func (InputAction) Kind() ActionKind    { return ActionInput }
func (DialogAction) Kind() ActionKind   { return ActionDialog }

// Command is an immutable launcher candidate. Sources rebuild their
// commands instead of mutating them.
type Command struct {
	ID          string
	Name        string
	Description string
	Icon        Icon
	Group       string
	Keywords    []string
	Shortcut    string // display only
	Action      Action

	// CloseAfterRun is nil unless the source overrides the default (true).
	CloseAfterRun *bool
}

// ShouldClose reports whether the launcher hides after running c.
func (c Command) ShouldClose() bool {
	return c.CloseAfterRun == nil || *c.CloseAfterRun
}

// IsBookmark reports whether c was synthesized from a bookmark snapshot.
func (c Command) IsBookmark() bool {
	return c.Group == BookmarkGroup && strings.HasPrefix(c.ID, BookmarkIDPrefix)
}

// DisplayValue is the canonical string a row is rendered and joined by:
// keywords alone for bookmarks, name plus keywords otherwise. The separator
// is kept even without keywords.
func (c Command) DisplayValue() string {
	if c.IsBookmark() {
		return strings.Join(c.Keywords, " ")
	}
	return c.Name + " " + strings.Join(c.Keywords, " ")
}
