package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"daylog/internal/backend"
	"daylog/internal/cli"
	"daylog/internal/config"
)

var (
	userID   string
	logLevel string
)

func main() {
	cli.LoadEnvFile()

	rootCmd := &cobra.Command{
		Use:          "daylogctl",
		Short:        "Inspect and edit daylog days from the command line",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "account id whose days are read or written")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(dayCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openBackend loads the environment configuration and opens the configured
// store. The caller must run the returned cleanup.
func openBackend(ctx context.Context) (*backend.BackendResult, *slog.Logger, error) {
	cfg := config.Load()
	cfg.LogLevel = logLevel
	logger := cli.SetupLogger(cfg.Level())

	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		return nil, nil, err
	}
	return res, logger, nil
}
