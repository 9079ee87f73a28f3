// Package model provides the domain model of the inspection directory:
// calendar dates, inspections and establishments.
package model

import (
	"errors"
	"fmt"
)

// Error categories. Every constructor error wraps exactly one of them so
// callers can classify a failure with errors.Is.
var (
	// ErrFormat indicates input whose shape does not match what is expected
	ErrFormat = errors.New("malformed input")

	// ErrRange indicates a numeric value outside its allowed bounds
	ErrRange = errors.New("value out of range")

	// ErrIdentity indicates an establishment name or zip that cannot identify it
	ErrIdentity = errors.New("invalid identity")
)

var (
	// ErrInvalidFormat is returned when a date string is not MM/DD/YYYY or MM/DD/YY
	ErrInvalidFormat = fmt.Errorf("%w: date must be formatted as MM/DD/YYYY or MM/DD/YY", ErrFormat)

	// ErrInvalidYear is returned for a year outside 2000-2025 and 0-25
	ErrInvalidYear = fmt.Errorf("%w: invalid year", ErrRange)

	// ErrInvalidMonth is returned for a month outside 1-12
	ErrInvalidMonth = fmt.Errorf("%w: invalid month, must be a value from 1-12", ErrRange)

	// ErrInvalidDay is returned for a day outside the bounds of its month
	ErrInvalidDay = fmt.Errorf("%w: invalid day", ErrRange)

	// ErrInvalidScore is returned for an inspection score outside 0-100
	ErrInvalidScore = fmt.Errorf("%w: score must be in the range of 0 to 100", ErrRange)

	// ErrMissingDate is returned when an inspection is built without a date
	ErrMissingDate = fmt.Errorf("%w: inspection date is required", ErrFormat)

	// ErrEmptyName is returned when an establishment name is empty
	ErrEmptyName = fmt.Errorf("%w: name cannot be empty", ErrIdentity)

	// ErrInvalidZip is returned when a zip code is not exactly 5 digits
	ErrInvalidZip = fmt.Errorf("%w: zip code must be exactly 5 digits", ErrIdentity)
)
