package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/zombor/receipt-organizer/internal/scanning"
)

// imageURLPrefix is where the HTTP server serves stored receipt images
const imageURLPrefix = "/api/images/"

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// Service handles receipt operations
type Service struct {
	store       *Store
	scanner     scanning.Scanner
	storage     Storage
	idGenerator IDGenerator

	// uploading allows a single extraction in flight at a time
	uploading sync.Mutex
}

// NewService creates a new Service that allocates random UUIDs
func NewService(store *Store, scanner scanning.Scanner, storage Storage) *Service {
	return NewServiceWithDeps(store, scanner, storage, &uuidGenerator{})
}

// NewServiceWithDeps creates a new Service with a custom ID generator for testing
func NewServiceWithDeps(store *Store, scanner scanning.Scanner, storage Storage, idGen IDGenerator) *Service {
	return &Service{
		store:       store,
		scanner:     scanner,
		storage:     storage,
		idGenerator: idGen,
	}
}

// sanitizeFilename cleans up a filename so it can be used as an image name in a URL
func sanitizeFilename(filename string) string {
	rawExt := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), rawExt)
	ext := unsafeFilenameChars.ReplaceAllString(strings.ToLower(strings.TrimPrefix(rawExt, ".")), "")

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = strings.TrimSpace(base)
	base = repeatedSpaces.ReplaceAllString(base, "_")

	// Phones produce long names; 50 chars is plenty to recognize a file
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "receipt"
	}

	if ext = strings.TrimSpace(ext); ext != "" {
		return base + "." + ext
	}
	return base
}

// ProcessReceipt stores the image, extracts its fields, validates them and
// inserts the resulting record. Scan and validation failures leave the store
// untouched. A returned error wrapping ErrPersistenceUnavailable comes with a
// non-nil receipt: the record was added but not saved to disk.
func (s *Service) ProcessReceipt(ctx context.Context, filename string, data []byte, contentType string) (*Receipt, error) {
	if !s.uploading.TryLock() {
		return nil, ErrUploadInProgress
	}
	defer s.uploading.Unlock()

	imageName := fmt.Sprintf("%s_%s", s.idGenerator.Generate(), sanitizeFilename(filename))
	imageURL := ""
	savedName, err := s.storage.Save(imageName, data)
	if err != nil {
		// The preview is optional; the receipt is still worth keeping
		slog.Warn("Failed to save receipt image", "filename", filename, "error", err)
	} else {
		imageURL = imageURLPrefix + savedName
	}

	discardImage := func() {
		if imageURL == "" {
			return
		}
		if err := s.storage.Delete(savedName); err != nil {
			slog.Warn("Failed to delete receipt image", "image", savedName, "error", err)
		}
	}

	raw, err := s.scanner.ScanReceipt(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to scan receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		discardImage()
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	rec, err := Validate(raw, imageURL, s.idGenerator)
	if err != nil {
		slog.Warn("Rejected extracted receipt", "filename", filename, "error", err)
		discardImage()
		return nil, err
	}

	if err := s.store.Insert(*rec); err != nil {
		return rec, err
	}

	slog.Info("Added receipt", "id", rec.ID, "vendor", rec.Vendor, "amount", rec.Amount, "currency", rec.Currency)
	return rec, nil
}

// ListReceipts returns all receipts, newest first
func (s *Service) ListReceipts() []Receipt {
	return s.store.List()
}

// Summary returns the aggregates over the current receipts
func (s *Service) Summary() Summary {
	return Summarize(s.store.List())
}

// DeleteReceipt removes a receipt and its image. Unknown ids are ignored.
func (s *Service) DeleteReceipt(id string) error {
	rec, ok := s.store.Get(id)
	if !ok {
		return nil
	}

	// The record is gone from memory even when saving fails
	storeErr := s.store.Delete(id)

	if name, ok := strings.CutPrefix(rec.ImageURL, imageURLPrefix); ok {
		if err := s.storage.Delete(name); err != nil {
			slog.Warn("Failed to delete receipt image", "image", name, "error", err)
		}
	}

	if storeErr != nil {
		return fmt.Errorf("deleting receipt: %w", storeErr)
	}
	slog.Info("Deleted receipt", "id", id)
	return nil
}

// ExportXLSX renders the current receipts as an XLSX workbook
func (s *Service) ExportXLSX() ([]byte, error) {
	return ExportXLSX(s.store.List())
}

// GetReceiptImage returns a stored receipt image by name
func (s *Service) GetReceiptImage(name string) ([]byte, error) {
	data, err := s.storage.Get(name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting receipt image: %w", err)
	}
	return data, nil
}
