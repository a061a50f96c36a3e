package receipt

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/zombor/receipt-organizer/internal/scanning"
)

// IDGenerator generates unique IDs for receipts
type IDGenerator interface {
	Generate() string
}

// uuidGenerator hands out random v4 UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// Validate turns a raw scanner payload into a Receipt. The date is only
// checked for presence; tax may exceed amount.
func Validate(raw *scanning.ReceiptData, imageURL string, ids IDGenerator) (*Receipt, error) {
	if raw == nil {
		return nil, &ValidationError{Field: "payload", Err: ErrMissingField}
	}

	vendor := strings.TrimSpace(raw.Vendor)
	currency := strings.TrimSpace(raw.Currency)
	category := strings.TrimSpace(raw.Category)
	date := strings.TrimSpace(raw.Date)

	required := []struct {
		name  string
		value string
	}{
		{"vendor", vendor},
		{"currency", currency},
		{"category", category},
		{"date", date},
	}
	for _, f := range required {
		if f.value == "" {
			return nil, &ValidationError{Field: f.name, Err: ErrMissingField}
		}
	}
	if raw.Amount == nil {
		return nil, &ValidationError{Field: "amount", Err: ErrMissingField}
	}

	if !validMoney(*raw.Amount) {
		return nil, &ValidationError{Field: "amount", Err: ErrInvalidNumber}
	}
	var tax float64
	if raw.Tax != nil {
		if !validMoney(*raw.Tax) {
			return nil, &ValidationError{Field: "tax", Err: ErrInvalidNumber}
		}
		tax = *raw.Tax
	}

	return &Receipt{
		ID:       ids.Generate(),
		Vendor:   vendor,
		Amount:   *raw.Amount,
		Tax:      tax,
		Currency: currency,
		Category: category,
		Date:     date,
		ImageURL: imageURL,
	}, nil
}

// checkStored applies the record invariants to a receipt read back from the medium
func checkStored(r Receipt) error {
	required := []struct {
		name  string
		value string
	}{
		{"id", r.ID},
		{"vendor", r.Vendor},
		{"currency", r.Currency},
		{"category", r.Category},
		{"date", r.Date},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name, Err: ErrMissingField}
		}
	}
	if !validMoney(r.Amount) {
		return &ValidationError{Field: "amount", Err: ErrInvalidNumber}
	}
	if !validMoney(r.Tax) {
		return &ValidationError{Field: "tax", Err: ErrInvalidNumber}
	}
	return nil
}

func validMoney(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
