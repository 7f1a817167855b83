package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/the-snesler/spacebot-sub001/pkg/api"
	"github.com/the-snesler/spacebot-sub001/pkg/config"
	"github.com/the-snesler/spacebot-sub001/pkg/livestate"
	"github.com/the-snesler/spacebot-sub001/pkg/logger"
	"github.com/the-snesler/spacebot-sub001/pkg/tui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a one-shot snapshot of live activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		defer logger.Close()

		settings := config.Get()
		client := api.NewClient(settings.Server.URL, settings.Server.Token)

		projector := livestate.NewProjector(client,
			livestate.WithRetention(settings.Timeline.Retention))
		if err := projector.Resync(ctx); err != nil {
			return fmt.Errorf("failed to fetch live snapshot: %w", err)
		}

		agents, err := client.ListAgents(ctx)
		if err != nil {
			logger.Warn("agent list unavailable: %v", err)
		}

		fmt.Print(tui.RenderStatus(projector.Channels(), agents))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
