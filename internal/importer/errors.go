package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned before any processing when no rows are supplied.
	ErrEmptyInput = errors.New("import contains no rows")
	// ErrMissingCompany is returned when the batch has no company id.
	ErrMissingCompany = errors.New("company id is required")
)

// Rejection reasons.
const (
	ReasonMissingRequiredField = "missing-required-field"
	ReasonInvalidUnitPrice     = "invalid-unit-price"
	ReasonValueOutOfRange      = "value-out-of-range"
	ReasonValueTooLong         = "value-too-long"
	ReasonDuplicateName        = "duplicate-name"
	ReasonDuplicateBarcode     = "duplicate-barcode"
	ReasonDuplicateOnWrite     = "duplicate-on-write"
)

// ValidationError reports why a row could not be turned into a draft.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Field)
}

// CategoryProvisionError aborts a batch when a category cannot be looked up or created.
type CategoryProvisionError struct {
	Name string
	Err  error
}

func (e *CategoryProvisionError) Error() string {
	return fmt.Sprintf("failed to provision category %q: %v", e.Name, e.Err)
}

func (e *CategoryProvisionError) Unwrap() error { return e.Err }

// BulkWriteError aborts a batch when the final product insert fails.
type BulkWriteError struct {
	Count int
	Err   error
}

func (e *BulkWriteError) Error() string {
	return fmt.Sprintf("failed to insert %d products: %v", e.Count, e.Err)
}

func (e *BulkWriteError) Unwrap() error { return e.Err }
