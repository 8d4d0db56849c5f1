// Package errors provides standardized error types and helpers for the Scriptorium codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists indicates a resource already exists
	ErrAlreadyExists = errors.New("already exists")
	// ErrNoIdentifier indicates a document carries no canonical identifier
	ErrNoIdentifier = errors.New("no identifier")
	// ErrNoContent indicates a document yields no extractable segments
	ErrNoContent = errors.New("no content")
	// ErrInternal indicates an internal system error
	ErrInternal = errors.New("internal error")
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "text", "segment")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "TEI", "URN", "reference")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "open", "scan")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// StoreError represents a persistent store failure with context
type StoreError struct {
	Operation string // Operation being performed (e.g., "insert", "commit")
	Message   string // Error details
	Err       error  // Underlying error
}

func (e *StoreError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("store %s failed: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("store %s failed: %v", e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports whether any error in err's chain matches target.
// Re-exported so callers don't need a second errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}
