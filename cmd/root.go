package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/defano/chicago-oasis-data/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "oasis",
	Short: "Chicago business accessibility report generator",
	Long: "Downloads Chicago business license, census tract and community area data, measures how " +
		"accessible each category of business is from every tract and community area, and writes the " +
		"JSON reports behind the Chicago Oasis map.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
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
