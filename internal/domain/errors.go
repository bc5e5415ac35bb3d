// Package domain holds the quote aggregate, its editing rules and the derived totals.
// Domain errors describe business failures only. Adapters translate them to HTTP status codes.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the operation conflicts with the current state of the aggregate.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates a required field is missing or a value is out of range.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden indicates the caller may not act on the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable indicates the external store or another dependency failed.
	ErrUnavailable = errors.New("unavailable")
)

// ErrLastLineItem is returned when removing the only remaining line item.
// The draft is left untouched.
var ErrLastLineItem error = &ConflictError{
	Entity: "line item",
	Reason: "a quote must keep at least one line item",
}

// NotFoundError names the record set and key that produced zero rows.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
	}

	return e.Entity + " not found"
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error for the given entity and lookup key.
func NewNotFoundError(entity, key string) error {
	return &NotFoundError{Entity: entity, Key: key}
}

// ConflictError reports a state conflict on an entity.
type ConflictError struct {
	Entity string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

// Unwrap returns ErrConflict.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// NewConflictError creates a conflict error.
func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

// FieldError is a single failed field check.
type FieldError struct {
	Field   string
	Message string
	Value   any
}

// ValidationError collects one or more field failures.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	switch len(e.Fields) {
	case 0:
		return "validation failed"
	case 1:
		return fmt.Sprintf("validation failed for %s: %s", e.Fields[0].Field, e.Fields[0].Message)
	}

	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Add appends a field failure.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no failures were collected.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}

	return e
}

// NewValidationError creates a validation error for one field.
func NewValidationError(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// NewValidationErrorWithValue creates a validation error that carries the rejected value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message, Value: value}}}
}

// ForbiddenError reports an operation the caller may not perform.
type ForbiddenError struct {
	Operation string
	Reason    string
}

func (e *ForbiddenError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s not allowed: %s", e.Operation, e.Reason)
	}

	return e.Operation + " not allowed"
}

// Unwrap returns ErrForbidden.
func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// NewForbiddenError creates a forbidden error.
func NewForbiddenError(operation, reason string) error {
	return &ForbiddenError{Operation: operation, Reason: reason}
}

// StoreError wraps a failure returned by the external record store.
// It matches both ErrUnavailable and the underlying cause.
type StoreError struct {
	Op        string
	RecordSet string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.RecordSet, e.Err)
}

// Unwrap exposes ErrUnavailable and the cause.
func (e *StoreError) Unwrap() []error {
	return []error{ErrUnavailable, e.Err}
}

// NewStoreError wraps err unless it is nil or already a domain error.
// Not-found conditions pass through unchanged so callers can treat them as "create new".
func NewStoreError(op, recordSet string, err error) error {
	if err == nil {
		return nil
	}

	if IsNotFound(err) || IsValidation(err) || IsConflict(err) {
		return err
	}

	var se *StoreError
	if errors.As(err, &se) {
		return err
	}

	return &StoreError{Op: op, RecordSet: recordSet, Err: err}
}

// IsNotFound reports whether err is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsForbidden reports whether err is a forbidden error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsUnavailable reports whether err is an unavailable or store error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
