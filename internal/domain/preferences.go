package domain

// FolderConfig is a folder shortcut shown in the launcher.
type FolderConfig struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Icon     Icon   `json:"icon,omitempty"`
	IsSystem bool   `json:"isSystem,omitempty"`
}

// Preferences is the user preference document. Shortcuts is nil when the
// document carries no shortcut member.
type Preferences struct {
	SetupCompleted      bool            `json:"setupCompleted"`
	CustomFolders       []FolderConfig  `json:"customFolders"`
	HiddenSystemFolders []string        `json:"hiddenSystemFolders"`
	Shortcuts           *ShortcutConfig `json:"shortcuts,omitempty"`
}

// IsHidden reports whether the system folder id was hidden by the user.
func (p Preferences) IsHidden(id string) bool {
	for _, h := range p.HiddenSystemFolders {
		if h == id {
			return true
		}
	}
	return false
}
