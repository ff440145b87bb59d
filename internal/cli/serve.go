package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mrunner/internal/app"
	"github.com/MrSnakeDoc/mrunner/internal/config"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
)

func addServe(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the launcher API.",
		Example: `
mrunner serve
MRUNNER_LISTEN_ADDR=127.0.0.1:9000 mrunner serve
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
			a, err := app.New(cmd.Context(), cfg, loggerClient)
			if err != nil {
				return fmt.Errorf("failed to initialize mrunner: %w", err)
			}
			return a.Run()
		},
	}

	topLevel.AddCommand(cmd)
}
