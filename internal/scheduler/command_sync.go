package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
)

// CommandSource produces the compiled-in commands
type CommandSource interface {
	Commands(ctx context.Context) []domain.Command
}

// CommandSink receives the compiled-in command list
type CommandSink interface {
	UpdateCommands(commands []domain.Command)
}

// CommandSyncer rebuilds the compiled-in commands. It runs at startup and
// after every folder change, since folder commands live in that list.
type CommandSyncer struct {
	source CommandSource
	sink   CommandSink
	logger logger.Logger
}

// NewCommandSyncer creates a new command syncer
func NewCommandSyncer(source CommandSource, sink CommandSink, log logger.Logger) *CommandSyncer {
	return &CommandSyncer{
		source: source,
		sink:   sink,
		logger: log,
	}
}

// Sync publishes a fresh command list
func (cs *CommandSyncer) Sync(ctx context.Context) {
	cmds := cs.source.Commands(ctx)
	cs.sink.UpdateCommands(cmds)
	cs.logger.Info("commands synced", logger.Int("count", len(cmds)))
}
