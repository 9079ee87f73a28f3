package model

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// zipLength is the number of digits of a zip code
const zipLength = 5

// Identity is the key under which rows are merged into one establishment:
// the name compared case-insensitively and the exact zip code.
type Identity struct {
	Name string
	Zip  string
}

// NewIdentity builds the identity of name and zip.
func NewIdentity(name, zip string) Identity {
	return Identity{Name: FoldName(name), Zip: zip}
}

// FoldName maps name to the case-folded form used for identity, ordering and
// keyword matching. Upper-casing first folds runes such as U+017F, whose
// lower case differs from that of their upper-case form.
func FoldName(name string) string {
	return strings.ToLower(strings.ToUpper(name))
}

// Establishment is a food-service business and its inspection history.
type Establishment struct {
	name        string
	zip         string
	address     string
	phone       string
	inspections []Inspection
}

// EstablishmentOption sets an optional attribute of an Establishment.
type EstablishmentOption func(*Establishment)

// WithAddress sets the street address.
func WithAddress(address string) EstablishmentOption {
	return func(e *Establishment) {
		e.address = address
	}
}

// WithPhone sets the phone number.
func WithPhone(phone string) EstablishmentOption {
	return func(e *Establishment) {
		e.phone = phone
	}
}

// NewEstablishment creates an Establishment with no inspections.
// name must be non-empty and zip exactly five ASCII digits.
func NewEstablishment(name, zip string, opts ...EstablishmentOption) (*Establishment, error) {
	if err := ValidateIdentity(name, zip); err != nil {
		return nil, err
	}
	e := &Establishment{
		name: name,
		zip:  zip,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ValidateIdentity checks that name and zip can identify an establishment.
func ValidateIdentity(name, zip string) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(zip) != zipLength {
		return fmt.Errorf("%w: %q", ErrInvalidZip, zip)
	}
	for i := range len(zip) {
		if zip[i] < '0' || zip[i] > '9' {
			return fmt.Errorf("%w: %q", ErrInvalidZip, zip)
		}
	}
	return nil
}

// Name returns the establishment name as it first appeared.
func (e *Establishment) Name() string { return e.name }

// Zip returns the five-digit zip code.
func (e *Establishment) Zip() string { return e.zip }

// Address returns the street address, empty when unknown.
func (e *Establishment) Address() string { return e.address }

// Phone returns the phone number, empty when unknown.
func (e *Establishment) Phone() string { return e.phone }

// Identity returns the merge key of e.
func (e *Establishment) Identity() Identity {
	return NewIdentity(e.name, e.zip)
}

// SameIdentity reports whether e and other denote the same business.
// Address and phone are ignored.
func (e *Establishment) SameIdentity(other *Establishment) bool {
	return e.Identity() == other.Identity()
}

// Equal reports structural equality: same identity, address and phone.
func (e *Establishment) Equal(other *Establishment) bool {
	if e == other {
		return true
	}
	if e == nil || other == nil {
		return false
	}
	return e.SameIdentity(other) && e.address == other.address && e.phone == other.phone
}

// Compare orders establishments by case-insensitive name, then zip.
func (e *Establishment) Compare(other *Establishment) int {
	if c := strings.Compare(FoldName(e.name), FoldName(other.name)); c != 0 {
		return c
	}
	return cmp.Compare(e.zip, other.zip)
}

// AddInspection appends an inspection to the history. The history is not
// reordered.
func (e *Establishment) AddInspection(i Inspection) {
	e.inspections = append(e.inspections, i)
}

// InspectionCount returns the number of recorded inspections.
func (e *Establishment) InspectionCount() int {
	return len(e.inspections)
}

// Inspections returns a copy of the history sorted by date. Inspections on the
// same date keep their insertion order.
func (e *Establishment) Inspections() []Inspection {
	sorted := slices.Clone(e.inspections)
	slices.SortStableFunc(sorted, Inspection.Compare)
	return sorted
}

// RecentInspections returns every inspection held on the two most recent
// distinct inspection dates, most recent first.
func (e *Establishment) RecentInspections() []Inspection {
	sorted := e.Inspections()

	var (
		recent []Inspection
		dates  int
		last   Date
	)
	for i := len(sorted) - 1; i >= 0; i-- {
		d := sorted[i].Date()
		if dates == 0 || !d.Equal(last) {
			if dates == 2 {
				break
			}
			dates++
			last = d
		}
		recent = append(recent, sorted[i])
	}
	return recent
}

// String returns the name of the establishment.
func (e *Establishment) String() string {
	return e.name
}
