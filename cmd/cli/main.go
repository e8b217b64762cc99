package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/quiniela-client/internal/app"
	"github.com/mauv0809/quiniela-client/internal/config"
	"github.com/mauv0809/quiniela-client/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	client  *app.App
)

var rootCmd = &cobra.Command{
	Use:   "quiniela",
	Short: "Play the Quiniela from the terminal",
	Long: `A command-line client for the Quiniela prediction contest: join the live
event with a ticket, lock in your predictions and follow results and rankings.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if os.Getenv("QUINIELA_LOG_FORMAT") == "" {
			cfg.LogFormat = "text"
		}
		if verbose {
			cfg.LogLevel = "debug"
		} else if os.Getenv("QUINIELA_LOG_LEVEL") == "" {
			cfg.LogLevel = "warn"
		}
		cfg.SetupLogging()

		// Metrics are only scraped from the watcher; keep them off the global registry.
		client, err = app.New(cfg, metrics.NewService(prometheus.NewRegistry()))
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if client != nil {
			client.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Debug("Command failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s\n", userMessage(err))
		os.Exit(1)
	}
}

func main() {
	Execute()
}
