// Package cli is the mrunner command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mrunner/internal/app"
	"github.com/MrSnakeDoc/mrunner/internal/config"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
)

// New returns the root command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mrunner",
		Short:        "Command palette core for a desktop launcher.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addServe(topLevel)
	addSearch(topLevel)
	addShortcuts(topLevel)
	addVersion(topLevel)
}

// loadApp builds and loads the app for one-shot commands. Logs below warn
// are dropped so they do not interleave with table output.
func loadApp(ctx context.Context) (*app.App, error) {
	cfg := config.Load()
	level := cfg.LogLevel
	if level != "debug" {
		level = "warn"
	}
	a, err := app.New(ctx, cfg, logger.New(level, cfg.PrettyLog))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mrunner: %w", err)
	}
	a.Load(ctx)
	return a, nil
}
