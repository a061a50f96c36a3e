package scanning

import (
	"context"
	"fmt"
)

// Unavailable is a Scanner that fails every call. The server installs it when
// no model could be configured so that browsing and deleting keep working.
type Unavailable struct {
	err error
}

// NewUnavailable creates a Scanner that reports err on every scan
func NewUnavailable(err error) *Unavailable {
	return &Unavailable{err: err}
}

// ScanReceipt always fails
func (u *Unavailable) ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*ReceiptData, error) {
	return nil, fmt.Errorf("scanner unavailable: %w", u.err)
}

// Close is a no-op
func (u *Unavailable) Close() error {
	return nil
}
