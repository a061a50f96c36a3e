package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zombor/receipt-organizer/internal/receipt"
)

func newDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Permanently delete a receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := openStore(opts)
			if err != nil {
				return err
			}
			defer closeDB()

			images, err := receipt.NewLocalStorage(opts.storagePath)
			if err != nil {
				return err
			}

			// Deletion goes through the service so the stored image is removed too
			svc := receipt.NewService(store, nil, images)
			if err := svc.DeleteReceipt(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
