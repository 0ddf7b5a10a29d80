package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"rentalhub-backend/internal/app"
	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/jobs"
	"rentalhub-backend/internal/service"
)

// reconcileCmd runs the inventory audit once
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Audit product availability against outstanding rentals",
	Long: `Compare each product's quantity_available with quantity_total minus the
quantity held by pending, approved and active rentals. Drift is reported and
never repaired.

Examples:
  rentalctl reconcile              # Print a table of discrepancies
  rentalctl reconcile --json       # Output the full report as JSON`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := app.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		report, err := jobs.NewJobRunner(service.NewInventoryService(store), cfg).RunReconcile(cmd.Context())
		if err != nil {
			return err
		}
		return printReport(cmd.OutOrStdout(), report, jsonOutput)
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func printReport(w io.Writer, report *domain.InventoryReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(w, "Checked %d products, %d discrepancies\n", report.ProductsChecked, len(report.Discrepancies))
	if len(report.Discrepancies) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tTOTAL\tAVAILABLE\tOUTSTANDING\tEXPECTED\tDRIFT")
	for _, d := range report.Discrepancies {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%+d\n",
			d.ProductID, d.ProductName, d.QuantityTotal, d.QuantityAvailable, d.Outstanding, d.Expected, d.Drift())
	}
	return tw.Flush()
}
