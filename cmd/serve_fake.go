package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/the-snesler/spacebot-sub001/pkg/config"
	"github.com/the-snesler/spacebot-sub001/pkg/devserver"
	"github.com/the-snesler/spacebot-sub001/pkg/logger"
)

var (
	fakeListen   string
	fakeLagAfter int
	fakeInterval time.Duration
)

var serveFakeCmd = &cobra.Command{
	Use:   "serve-fake",
	Short: "Run a scripted fake backend for development",
	Long: `serve-fake runs an in-process backend that serves the dashboard's
whole REST and streaming surface from a demo scenario. Point the
dashboard at it with --server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		defer logger.Close()

		scenario := devserver.DemoScenario()
		scenario.LagAfter = fakeLagAfter

		server := devserver.New(devserver.Config{
			Listen:        fakeListen,
			Token:         config.Get().Server.Token,
			EventInterval: fakeInterval,
		}, scenario)

		err := server.Start(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	serveFakeCmd.Flags().StringVar(&fakeListen, "listen", ":8420", "listen address")
	serveFakeCmd.Flags().IntVar(&fakeLagAfter, "lag-after", 0, "inject a lagged event after N scripted events (0 disables)")
	serveFakeCmd.Flags().DurationVar(&fakeInterval, "event-interval", 2*time.Second, "pause between scripted activity events")
	rootCmd.AddCommand(serveFakeCmd)
}
