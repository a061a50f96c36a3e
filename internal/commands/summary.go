package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zombor/receipt-organizer/internal/receipt"
)

func newSummaryCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show spending totals and the per-category breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := openStore(opts)
			if err != nil {
				return err
			}
			defer closeDB()

			s := receipt.Summarize(store.List())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total spending:    %s\n", s.TotalSpending.StringFixed(2))
			fmt.Fprintf(out, "Total tax:         %s\n", s.TotalTax.StringFixed(2))
			fmt.Fprintf(out, "Receipts:          %d\n", s.ReceiptCount)
			fmt.Fprintf(out, "Average / receipt: %s\n", s.AveragePerReceipt.StringFixed(2))
			if len(s.ByCategory) == 0 {
				return nil
			}

			fmt.Fprintln(out)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tTOTAL")
			for _, c := range s.ByCategory {
				fmt.Fprintf(tw, "%s\t%s\n", c.Category, c.Total.StringFixed(2))
			}
			return tw.Flush()
		},
	}
}
