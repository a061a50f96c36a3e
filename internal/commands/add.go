package commands

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zombor/receipt-organizer/internal/receipt"
	"github.com/zombor/receipt-organizer/internal/scanning"
)

func newAddCommand(opts *options) *cobra.Command {
	var cfg scanning.Config

	cmd := &cobra.Command{
		Use:   "add <image>",
		Short: "Scan a receipt image and add it to the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading image: %w", err)
			}

			scanner, err := scanning.New(cfg)
			if err != nil {
				return err
			}
			defer scanner.Close()

			store, closeDB, err := openStore(opts)
			if err != nil {
				return err
			}
			defer closeDB()

			images, err := receipt.NewLocalStorage(opts.storagePath)
			if err != nil {
				return err
			}

			svc := receipt.NewService(store, scanner, images)
			rec, err := svc.ProcessReceipt(cmd.Context(), filepath.Base(args[0]), data, http.DetectContentType(data))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s %s %.2f (%s, %s)\n",
				rec.ID, rec.Vendor, rec.Currency, rec.Amount, rec.Category, rec.Date)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.Type, "scanner", "gemini", "scanner type: gemini or ollama")
	cmd.Flags().StringVar(&cfg.GeminiKey, "gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY)")
	cmd.Flags().StringVar(&cfg.GeminiModel, "gemini-model", "gemini-2.5-flash", "Google Gemini model name")
	cmd.Flags().StringVar(&cfg.OllamaURL, "ollama-url", "http://localhost:11434", "Ollama API base URL")
	cmd.Flags().StringVar(&cfg.OllamaModel, "ollama-model", "llava", "Ollama model name")

	return cmd
}
