package scanning

import "context"

// SuggestedCategories is the category set offered to the model and shown to users.
// Extracted receipts may still carry a category outside this list.
var SuggestedCategories = []string{
	"Dining",
	"Travel",
	"Supplies",
	"Groceries",
	"Entertainment",
	"Utilities",
	"Other",
}

// ReceiptData contains the raw fields extracted from a receipt image.
// Amount and Tax are pointers so a missing value can be told apart from zero.
type ReceiptData struct {
	Vendor   string   `json:"vendor"`
	Amount   *float64 `json:"amount"`
	Tax      *float64 `json:"tax,omitempty"`
	Currency string   `json:"currency"`
	Category string   `json:"category"`
	Date     string   `json:"date"` // YYYY-MM-DD when the model complies
}

// Scanner defines the interface for receipt scanning operations
type Scanner interface {
	// ScanReceipt analyzes a receipt image/PDF and extracts its fields
	ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*ReceiptData, error)
	// Close closes the scanner and releases resources
	Close() error
}
