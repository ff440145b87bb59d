// Package apps provides the compiled-in launcher commands: applications,
// quick-access folders and the launcher's own dialogs.
package apps

import "github.com/MrSnakeDoc/mrunner/internal/domain"

const (
	GroupApplications = "Applications"
	GroupQuickAccess  = "Quick Access"
	GroupLauncher     = "Launcher"
)

// Applications returns the application commands for goos.
func Applications(goos string) []domain.Command {
	code := domain.Command{
		ID:          "app-code",
		Name:        "VS Code",
		Description: "Open Visual Studio Code",
		Icon:        domain.IconCode,
		Group:       GroupApplications,
		Keywords:    []string{"editor", "code", "ide", "vscode"},
		Action:      domain.ShellAction{Command: "code"},
	}

	switch goos {
	case "darwin", "windows":
		return []domain.Command{code}
	}

	return []domain.Command{
		{
			ID:          "app-chrome-gaio",
			Name:        "Chrome - Gaio",
			Description: "Open Chrome browser",
			Icon:        domain.IconGlobe,
			Group:       GroupApplications,
			Keywords:    []string{"browser", "web", "internet"},
			Action:      domain.ShellAction{Command: `google-chrome-stable --profile-directory="Profile 2"`},
		},
		code,
		{
			ID:          "app-dolphin",
			Name:        "Dolphin",
			Description: "Open file manager",
			Icon:        domain.IconFolder,
			Group:       GroupApplications,
			Keywords:    []string{"files", "explorer", "manager"},
			Action:      domain.ShellAction{Command: "dolphin"},
		},
	}
}

// Dialogs returns the commands that open launcher dialogs.
func Dialogs() []domain.Command {
	return []domain.Command{
		{
			ID:          "launcher-add-bookmark",
			Name:        "Add Bookmark",
			Description: "Save a new bookmark",
			Icon:        domain.IconBookmark,
			Group:       GroupLauncher,
			Keywords:    []string{"bookmark", "new", "save"},
			Action:      domain.DialogAction{Dialog: domain.DialogBookmarkAdd},
		},
		{
			ID:          "launcher-manage-folders",
			Name:        "Manage Folders",
			Description: "Add, hide or remove quick-access folders",
			Icon:        domain.IconFolderCog,
			Group:       GroupLauncher,
			Keywords:    []string{"folders", "settings"},
			Action:      domain.DialogAction{Dialog: domain.DialogFolderManager},
		},
	}
}
