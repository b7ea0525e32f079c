// Package apperr defines the error taxonomy shared by the ledger and
// reconciliation services. Callers branch on kind with errors.As or the Is*
// helpers; wrapping with %w preserves the kind.
package apperr

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind names an error category.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "conflict"
	KindComputation Kind = "computation"
)

// ValidationError rejects a malformed or unbalanced unit of input.
type ValidationError struct {
	Field   string
	Message string

	// Required and Actual are set for balance violations:
	// Required is total debits, Actual is total credits.
	Required *decimal.Decimal
	Actual   *decimal.Decimal
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Required != nil && e.Actual != nil {
		msg = fmt.Sprintf("%s (required %s, actual %s)", msg, e.Required.StringFixed(2), e.Actual.StringFixed(2))
	}
	return "validation: " + msg
}

// Kind reports KindValidation.
func (e *ValidationError) Kind() Kind { return KindValidation }

// NotFoundError reports a missing account, entry or reconciliation.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// Kind reports KindNotFound.
func (e *NotFoundError) Kind() Kind { return KindNotFound }

// ConflictError reports an operation rejected by the current state of a record.
type ConflictError struct {
	Resource string
	ID       string
	Message  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s %q: %s", e.Resource, e.ID, e.Message)
}

// Kind reports KindConflict.
func (e *ConflictError) Kind() Kind { return KindConflict }

// ComputationError reports an unexpected internal failure during aggregation.
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("computation %s: %v", e.Op, e.Err)
	}
	return "computation " + e.Op + " failed"
}

// Unwrap returns the underlying cause.
func (e *ComputationError) Unwrap() error { return e.Err }

// Kind reports KindComputation.
func (e *ComputationError) Kind() Kind { return KindComputation }

// Validation creates a ValidationError.
func Validation(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Unbalanced creates a ValidationError carrying the required and actual totals.
func Unbalanced(debits, credits decimal.Decimal) *ValidationError {
	return &ValidationError{
		Field:    "lines",
		Message:  "debits must equal credits",
		Required: &debits,
		Actual:   &credits,
	}
}

// NotFound creates a NotFoundError.
func NotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// Conflict creates a ConflictError.
func Conflict(resource, id, message string) *ConflictError {
	return &ConflictError{Resource: resource, ID: id, Message: message}
}

// Computation creates a ComputationError.
func Computation(op string, err error) *ComputationError {
	return &ComputationError{Op: op, Err: err}
}

// KindOf returns the kind of the first categorized error in err's chain, or "".
func KindOf(err error) Kind {
	var k interface{ Kind() Kind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsConflict reports whether err wraps a ConflictError.
func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

// IsComputation reports whether err wraps a ComputationError.
func IsComputation(err error) bool {
	var e *ComputationError
	return errors.As(err, &e)
}
