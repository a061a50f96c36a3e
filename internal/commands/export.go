package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zombor/receipt-organizer/internal/receipt"
)

func newExportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write all receipts and the summary to an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := openStore(opts)
			if err != nil {
				return err
			}
			defer closeDB()

			data, err := receipt.ExportXLSX(store.List())
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d receipts to %s\n", len(store.List()), args[0])
			return nil
		},
	}
}
