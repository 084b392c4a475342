// Package businessflow contains the core business logic for the rate-card engine.
package businessflow

import (
	"errors"
	"fmt"
	"strings"
)

// Business flow error constants
var (
	// Rate card errors
	ErrRateCardNotFound      = errors.New("rate card not found")
	ErrRateCardFieldsInvalid = errors.New("rate card fields are invalid")

	// Slab structural errors
	ErrMissingSlabs = errors.New("tiered rate card requires at least one slab")
	ErrSlabOverlap  = errors.New("slab list is invalid")

	// Payout domain errors
	ErrNoMatchingSlab   = errors.New("no slab matches the given price")
	ErrPriceOutOfRange  = errors.New("price is outside the rate card's applicable range")
	ErrPriceNotPositive = errors.New("price must be greater than zero")

	// Import errors
	ErrEmptyImportFile       = errors.New("import file contains no data rows")
	ErrUnsupportedImportFile = errors.New("unsupported import file format")

	// Request errors
	ErrDispatchDateRequired = errors.New("dispatch_date is required")
	ErrDispatchDateInvalid  = errors.New("dispatch_date must be a YYYY-MM-DD date")
)

// BusinessError is the error shape surfaced to handlers.
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// SlabValidationError reports every violation found in a slab list in one
// pass. Kind is ErrMissingSlabs or ErrSlabOverlap and is reachable through
// errors.Is.
type SlabValidationError struct {
	Kind   error
	Issues []string
}

func (e *SlabValidationError) Error() string {
	return strings.Join(e.Issues, "; ")
}

func (e *SlabValidationError) Unwrap() error {
	return e.Kind
}

// FieldValidationError carries the full list of field-level violations for one
// draft rate card. It is never produced fail-fast: every violation is present.
type FieldValidationError struct {
	Issues []string
}

func (e *FieldValidationError) Error() string {
	return strings.Join(e.Issues, "; ")
}

func (e *FieldValidationError) Unwrap() error {
	return ErrRateCardFieldsInvalid
}
