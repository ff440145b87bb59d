package apps

import (
	"context"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
)

// Source assembles the compiled-in command list.
type Source struct {
	folders *Folders
	goos    string
	logger  logger.Logger
}

// NewSource creates a source. folders may be nil, then no quick-access
// folders are listed.
func NewSource(folders *Folders, goos string, log logger.Logger) *Source {
	return &Source{folders: folders, goos: goos, logger: log}
}

// Commands returns quick-access folders, applications, then dialogs. A
// preference read failure falls back to the system folders.
func (s *Source) Commands(ctx context.Context) []domain.Command {
	var cmds []domain.Command

	if s.folders != nil {
		folders, err := s.folders.List(ctx)
		if err != nil {
			s.logger.Warn("failed to read folder preferences, showing system folders", logger.Error(err))
			folders = s.folders.System()
		}
		for _, f := range folders {
			cmds = append(cmds, FolderCommand(f))
		}
	}

	cmds = append(cmds, Applications(s.goos)...)
	cmds = append(cmds, Dialogs()...)
	return cmds
}
