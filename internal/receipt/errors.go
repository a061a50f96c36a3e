package receipt

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a required payload field is absent or blank.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidNumber is returned when amount or tax is negative, NaN or infinite.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrExtractionFailed wraps every failure coming from the scanner.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrPersistenceUnavailable reports that the durable medium could not be read or written.
	// The in-memory collection stays authoritative.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	// ErrUploadInProgress is returned when an upload arrives while another is being scanned.
	ErrUploadInProgress = errors.New("upload already in progress")
	// ErrNotFound is returned when no receipt or image matches the request.
	ErrNotFound = errors.New("receipt not found")
)

// ValidationError describes why a raw payload was rejected.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Field)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
