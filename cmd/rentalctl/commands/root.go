package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rentalhub-backend/internal/config"
	"rentalhub-backend/internal/logger"
)

var (
	// Global flags
	configPath string
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rentalctl",
	Short: "Operator tool for the RentalHub backend",
	Long: `rentalctl runs maintenance tasks against a RentalHub database.

Commands:
  migrate    - Apply the embedded Postgres schema
  reconcile  - Audit product availability against outstanding rentals`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.dev.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}
