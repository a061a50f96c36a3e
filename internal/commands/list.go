package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List receipts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := openStore(opts)
			if err != nil {
				return err
			}
			defer closeDB()

			receipts := store.List()
			if len(receipts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No receipts yet")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tVENDOR\tCATEGORY\tTAX\tAMOUNT")
			for _, r := range receipts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s %.2f\t%s %.2f\n",
					r.ID, r.Date, r.Vendor, r.Category, r.Currency, r.Tax, r.Currency, r.Amount)
			}
			return tw.Flush()
		},
	}
}
