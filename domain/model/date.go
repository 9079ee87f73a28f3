package model

import (
	"cmp"
	"fmt"
	"strconv"
	"time"
)

const (
	// minYear and maxYear bound four-digit years
	minYear = 2000
	maxYear = 2025
	// maxShortYear bounds the two-digit shorthand, 0 through 25
	maxShortYear = maxYear - minYear

	// longDateLen is the length of MM/DD/YYYY
	longDateLen = 10
	// shortDateLen is the length of MM/DD/YY
	shortDateLen = 8

	dateSeparator = '/'
)

// leapYears lists every leap year in the accepted range.
var leapYears = map[int]bool{
	2000: true, 2004: true, 2008: true, 2012: true,
	2016: true, 2020: true, 2024: true,
}

// Date is a validated calendar date between 01/01/2000 and 12/31/2025.
// The zero value is not a valid date and is reported by IsZero.
type Date struct {
	year  int
	month int
	day   int
}

// ParseDate parses a date written as MM/DD/YYYY or MM/DD/YY.
// Two-digit years are read as 2000+YY.
func ParseDate(text string) (Date, error) {
	if len(text) != longDateLen && len(text) != shortDateLen {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
	for i := range len(text) {
		c := text[i]
		switch i {
		case 2, 5:
			if c != dateSeparator {
				return Date{}, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
			}
		default:
			if c < '0' || c > '9' {
				return Date{}, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
			}
		}
	}

	// Positions are already checked, so Atoi cannot fail.
	month, _ := strconv.Atoi(text[0:2])
	day, _ := strconv.Atoi(text[3:5])
	year, _ := strconv.Atoi(text[6:])
	return NewDate(month, day, year)
}

// NewDate builds a date from its components. year may be written with four
// digits (2000-2025) or two (0-25).
func NewDate(month, day, year int) (Date, error) {
	if err := validateDate(month, day, year); err != nil {
		return Date{}, err
	}
	if year <= maxShortYear {
		year += minYear
	}
	return Date{year: year, month: month, day: day}, nil
}

// MustParseDate is like ParseDate but panics on error. Intended for tests and
// package-level fixtures.
func MustParseDate(text string) Date {
	d, err := ParseDate(text)
	if err != nil {
		panic(err)
	}
	return d
}

func validateDate(month, day, year int) error {
	if (year < minYear || year > maxYear) && (year < 0 || year > maxShortYear) {
		return fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	if day < 1 || day > daysIn(month, year) {
		return fmt.Errorf("%w: %02d/%02d/%d", ErrInvalidDay, month, day, year)
	}
	return nil
}

// daysIn returns the last valid day of month in year. year may be two-digit.
func daysIn(month, year int) int {
	switch month {
	case 4, 6, 9, 11:
		return 30
	case 2:
		if year <= maxShortYear {
			year += minYear
		}
		if leapYears[year] {
			return 29
		}
		return 28
	default:
		return 31
	}
}

// Year returns the four-digit year.
func (d Date) Year() int { return d.year }

// Month returns the month, 1 through 12.
func (d Date) Month() int { return d.month }

// Day returns the day of the month.
func (d Date) Day() int { return d.day }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Compare orders dates by year, then month, then day.
func (d Date) Compare(other Date) int {
	if c := cmp.Compare(d.year, other.year); c != 0 {
		return c
	}
	if c := cmp.Compare(d.month, other.month); c != 0 {
		return c
	}
	return cmp.Compare(d.day, other.day)
}

// Equal reports whether both dates denote the same day.
func (d Date) Equal(other Date) bool {
	return d == other
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.year, time.Month(d.month), d.day, 0, 0, 0, 0, time.UTC)
}

// String returns the canonical MM/DD/YYYY form.
func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.month, d.day, d.year)
}
