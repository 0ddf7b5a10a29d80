package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"rentalhub-backend/internal/config"
	"rentalhub-backend/internal/repository/postgres"
)

var dryRun bool

// migrateCmd applies the schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded Postgres schema",
	Long: `Apply the embedded schema. Every statement is idempotent, so running
migrate against an up-to-date database is a no-op.

Examples:
  rentalctl migrate                # Apply schema
  rentalctl migrate --dry-run      # Print the schema without executing`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dryRun {
			fmt.Fprint(cmd.OutOrStdout(), postgres.Schema())
			return nil
		}
		return runMigrate(cmd)
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the schema without executing it")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate requires the postgres driver, got %q", cfg.Database.Driver)
	}

	ctx := cmd.Context()
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Schema applied")
	return nil
}
