package model

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MinScore is the lowest inspection score
	MinScore = 0
	// MaxScore is the highest inspection score
	MaxScore = 100
)

// Inspection is one dated inspection result of an establishment.
type Inspection struct {
	date      Date
	score     int
	violation string
	risk      string
}

// NewInspection creates an Inspection. violation and risk are optional and
// may be empty.
func NewInspection(date Date, score int, violation, risk string) (Inspection, error) {
	if date.IsZero() {
		return Inspection{}, ErrMissingDate
	}
	if score < MinScore || score > MaxScore {
		return Inspection{}, fmt.Errorf("%w: %d", ErrInvalidScore, score)
	}
	return Inspection{
		date:      date,
		score:     score,
		violation: violation,
		risk:      risk,
	}, nil
}

// Date returns the inspection date.
func (i Inspection) Date() Date { return i.date }

// Score returns the inspection score.
func (i Inspection) Score() int { return i.score }

// Violation returns the violation description, empty when none was recorded.
func (i Inspection) Violation() string { return i.violation }

// Risk returns the risk category, empty when none was recorded.
func (i Inspection) Risk() string { return i.risk }

// Compare orders inspections by date only.
func (i Inspection) Compare(other Inspection) int {
	return i.date.Compare(other.date)
}

// String renders "MM/DD/YYYY, score[, violation][, risk]".
func (i Inspection) String() string {
	parts := []string{i.date.String(), strconv.Itoa(i.score)}
	if i.violation != "" {
		parts = append(parts, i.violation)
	}
	if i.risk != "" {
		parts = append(parts, i.risk)
	}
	return strings.Join(parts, ", ")
}
