package plugins

import (
	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
)

// Source turns the plugin directory into launcher commands.
type Source struct {
	loader *Loader
	mapper *Mapper
	logger logger.Logger
}

// NewSource creates a source reading dir.
func NewSource(dir string, log logger.Logger) *Source {
	return &Source{
		loader: NewLoader(dir),
		mapper: NewMapper(),
		logger: log,
	}
}

// Dir returns the plugin directory.
func (s *Source) Dir() string {
	return s.loader.Dir()
}

// Commands loads and validates every plugin. Invalid files are logged and
// skipped.
func (s *Source) Commands() ([]domain.Command, error) {
	descs, bad, err := s.loader.Load()
	if err != nil {
		return nil, err
	}
	for _, fe := range bad {
		s.logger.Warn("skipping plugin file",
			logger.String("file", fe.File),
			logger.Error(fe.Err))
	}

	cmds, rejected := s.mapper.MapAll(descs)
	for i, err := range rejected {
		s.logger.Warn("invalid plugin",
			logger.String("id", descs[i].ID),
			logger.Error(err))
	}
	return cmds, nil
}
