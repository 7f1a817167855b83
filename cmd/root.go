package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/the-snesler/spacebot-sub001/pkg/config"
	"github.com/the-snesler/spacebot-sub001/pkg/logger"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "spaceboard",
	Short: "Live dashboard for spacebot channels",
	Long: `spaceboard mirrors what the spacebot backend is doing right now:
per-channel typing, workers, branches and message timelines, kept in
sync over a reconnecting event stream, plus a web chat session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return runDashboard(ctx)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is .spaceboard/settings.yaml)")

	rootCmd.PersistentFlags().String("server", "http://localhost:8420", "backend base URL")
	viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.PersistentFlags().String("token", "", "API bearer token")
	viper.BindPFlag("server.token", rootCmd.PersistentFlags().Lookup("token"))

	rootCmd.PersistentFlags().String("session", "web-dashboard", "chat session ID")
	viper.BindPFlag("chat.session_id", rootCmd.PersistentFlags().Lookup("session"))

	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if err := config.Init(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
