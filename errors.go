package sfinspect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/sfinspect/domain/model"
)

// Standard error messages and error creation functions for consistency
var (
	// ErrNoInspectionData marks a row without a score. Such rows are skipped, not rejected.
	ErrNoInspectionData = errors.New("sfinspect: row has no inspection data")

	// ErrTooFewFields indicates a row that does not reach the score column
	ErrTooFewFields = fmt.Errorf("%w: row has too few fields", model.ErrFormat)

	// ErrLineTooLong indicates an input line longer than the reader accepts
	ErrLineTooLong = fmt.Errorf("%w: line too long", model.ErrFormat)

	// ErrMalformedScore indicates a score that is not an integer
	ErrMalformedScore = fmt.Errorf("%w: score is not a number", model.ErrFormat)

	// ErrNotInserted indicates an establishment the directory refused to add
	ErrNotInserted = fmt.Errorf("%w: establishment was not added to the directory", model.ErrIdentity)

	// ErrNotFound indicates that a query matched no establishment
	ErrNotFound = errors.New("sfinspect: no matching establishment")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("sfinspect: unsupported file format")

	// ErrFileNotFound indicates file not found
	ErrFileNotFound = errors.New("sfinspect: file not found")

	// ErrPermissionDenied indicates permission denied
	ErrPermissionDenied = errors.New("sfinspect: permission denied")

	// ErrNoInput indicates that the builder has no source to load
	ErrNoInput = errors.New("sfinspect: at least one input must be provided")

	// ErrContextCancelled indicates context was cancelled
	ErrContextCancelled = errors.New("sfinspect: context cancelled")
)

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	Line      int
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithLine adds the input line number to the error context
func (ec *ErrorContext) WithLine(line int) *ErrorContext {
	ec.Line = line
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("sfinspect: %s failed", ec.Operation))

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}

	if ec.Line > 0 {
		parts = append(parts, fmt.Sprintf("line: %d", ec.Line))
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}
