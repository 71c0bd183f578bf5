package cmd

import (
	"fmt"

	"forgefit/internal/config"
	"forgefit/internal/storage"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "forgefit",
	Short: "Deterministic training plan generator and guided session runner",
}

func Execute() error {
	return rootCmd.Execute()
}

// openStorage loads config, builds the logger and opens the database. The
// commands that only touch the local session file skip this entirely.
func openStorage() (*storage.Storage, *config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config (run 'forgefit init' first?): %w", err)
	}
	log := config.NewLogger(cfg.Log)
	st, err := storage.New(cfg, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening storage: %w", err)
	}
	return st, cfg, log, nil
}
