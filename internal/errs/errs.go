// Package errs defines the error taxonomy shared by services and handlers.
package errs

import (
	"errors"
	"fmt"
)

// Domain sentinels. Handlers map these to HTTP status codes; clients treat
// them as generic failures (toast), unlike ValidationError which keeps the
// confirmation dialog open.
var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyAssigned     = errors.New("already assigned")
	ErrHasDependents       = errors.New("cannot delete: active dependents exist")
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	ErrVersionConflict     = errors.New("entity was modified by another request")
	ErrNoChanges           = errors.New("no changes to save")
)

// ValidationError marks a failed identity/password confirmation. Calling
// code discriminates on this type to keep the confirmation dialog open and
// show an inline error instead of a generic toast.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidation builds a ValidationError with the given message.
func NewValidation(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// FieldError is a per-field validation failure. It is returned to the caller
// as data, never used to abort a transaction.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewField builds a FieldError for the given field.
func NewField(field, msg string) *FieldError {
	return &FieldError{Field: field, Message: msg}
}

// AsField extracts a FieldError from err if present.
func AsField(err error) (*FieldError, bool) {
	var fe *FieldError
	ok := errors.As(err, &fe)
	return fe, ok
}
