package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/epimaps/broadstreet/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "broadstreet",
	Short: "Interactive map of the 1854 Broad Street cholera outbreak",
	Long:  "Loads the John Snow death and pump records plus the district boundaries, normalizes them to WGS84, and serves an interactive dashboard map.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
