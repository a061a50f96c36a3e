package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zombor/receipt-organizer/internal/receipt"
)

// options are the persistent flags shared by every subcommand
type options struct {
	dbPath      string
	storagePath string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(version string) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "receipts",
		Short:   "Manage the receipt collection offline",
		Version: version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "receipts.db", "database file path")
	rootCmd.PersistentFlags().StringVar(&opts.storagePath, "storage", "./receipt-images", "receipt image directory")

	rootCmd.AddCommand(
		newListCommand(opts),
		newSummaryCommand(opts),
		newDeleteCommand(opts),
		newAddCommand(opts),
		newExportCommand(opts),
	)

	return rootCmd
}

// openStore opens the database and loads the collection. The returned func closes the database.
func openStore(opts *options) (*receipt.Store, func() error, error) {
	db, err := receipt.NewBoltDB(opts.dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	store := receipt.NewStore(db)
	// Load logs and recovers from unreadable state by starting empty, like the server
	_ = store.Load()
	return store, db.Close, nil
}
