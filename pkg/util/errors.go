// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by the column, netdb, overlay and operations layers.
var (
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrNotFound           = errors.New("resource not found")
	ErrPreconditionFailed = errors.New("precondition not met")
	ErrValidationFailed   = errors.New("validation failed")
	ErrUnknownColumnType  = errors.New("unknown column type")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrColumnNotFound     = errors.New("column not found")
	ErrBackend            = errors.New("backend error")
	ErrUnsupported        = errors.New("unsupported")
)

// PreconditionError represents a failed precondition check with context.
// Precondition holds the operator-facing explanation.
type PreconditionError struct {
	Operation    string
	Resource     string
	Precondition string
	Details      string
}

func (e *PreconditionError) Error() string {
	msg := fmt.Sprintf("precondition failed for %s on %s: %s", e.Operation, e.Resource, e.Precondition)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

func (e *PreconditionError) Unwrap() error {
	return ErrPreconditionFailed
}

// NewPreconditionError creates a new precondition error
func NewPreconditionError(operation, resource, precondition, details string) *PreconditionError {
	return &PreconditionError{
		Operation:    operation,
		Resource:     resource,
		Precondition: precondition,
		Details:      details,
	}
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddError adds an error message unconditionally
func (v *ValidationBuilder) AddError(message string) *ValidationBuilder {
	v.errors = append(v.errors, message)
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}

// ColumnNotFoundError is returned when netdb answers a column request with
// a false result. Comment carries netdb's explanation.
type ColumnNotFoundError struct {
	Column  string
	SetID   string
	Comment string
}

func (e *ColumnNotFoundError) Error() string {
	if e.Comment != "" {
		return e.Comment
	}
	return fmt.Sprintf("column %s not found for %s", e.Column, e.SetID)
}

func (e *ColumnNotFoundError) Unwrap() error {
	return ErrColumnNotFound
}

// IsNotFound reports whether err means a missing column or element.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrColumnNotFound)
}

// BackendError wraps a failure talking to an external service (netdb,
// netdb-util, redis, the router).
type BackendError struct {
	Service string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Service, e.Err)
}

func (e *BackendError) Unwrap() []error {
	return []error{ErrBackend, e.Err}
}

// NewBackendError creates a backend error for service
func NewBackendError(service string, err error) *BackendError {
	return &BackendError{Service: service, Err: err}
}
