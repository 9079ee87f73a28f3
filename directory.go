package sfinspect

import (
	"iter"
	"strings"

	"github.com/nao1215/sfinspect/domain/model"
	"github.com/nao1215/sfinspect/sequence"
)

// Directory is the set of unique establishments built by a load.
//
// Establishments are kept in insertion order in a unique sequence. Merging
// rows goes through an identity index (case-insensitive name and exact zip),
// so two rows for the same business always land on the same Establishment
// even when their address or phone differ.
type Directory struct {
	establishments *sequence.Sequence[*model.Establishment]
	index          map[model.Identity]*model.Establishment
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		establishments: sequence.New[*model.Establishment](),
		index:          make(map[model.Identity]*model.Establishment),
	}
}

// Lookup returns the establishment registered under name and zip.
func (d *Directory) Lookup(name, zip string) (*model.Establishment, bool) {
	e, ok := d.index[model.NewIdentity(name, zip)]
	return e, ok
}

// Insert adds e unless an establishment with the same identity is already
// present. It reports whether e was added.
func (d *Directory) Insert(e *model.Establishment) bool {
	if e == nil {
		return false
	}
	id := e.Identity()
	if _, exists := d.index[id]; exists {
		return false
	}
	if !d.establishments.Add(e) {
		return false
	}
	d.index[id] = e
	return true
}

// Len returns the number of establishments.
func (d *Directory) Len() int {
	return d.establishments.Len()
}

// All iterates over the establishments in directory order.
func (d *Directory) All() iter.Seq[*model.Establishment] {
	return d.establishments.All()
}

// Establishments returns the establishments in directory order.
func (d *Directory) Establishments() []*model.Establishment {
	return d.establishments.ToSlice()
}

// InspectionCount returns the number of inspections across all establishments.
func (d *Directory) InspectionCount() int {
	total := 0
	for e := range d.All() {
		total += e.InspectionCount()
	}
	return total
}

// FindByNameKeyword returns the establishments whose name contains keyword,
// ignoring case, sorted by name and then zip. It returns false when keyword
// is empty or nothing matches.
func (d *Directory) FindByNameKeyword(keyword string) (*Directory, bool) {
	if keyword == "" {
		return nil, false
	}
	needle := model.FoldName(keyword)
	return d.filter(func(e *model.Establishment) bool {
		return strings.Contains(model.FoldName(e.Name()), needle)
	})
}

// FindByZipSubstring returns the establishments whose zip code contains
// keyword, sorted by name and then zip. It returns false when keyword is
// empty or nothing matches.
func (d *Directory) FindByZipSubstring(keyword string) (*Directory, bool) {
	if keyword == "" {
		return nil, false
	}
	return d.filter(func(e *model.Establishment) bool {
		return strings.Contains(e.Zip(), keyword)
	})
}

// filter builds a sorted directory of the establishments that satisfy match.
// The result shares Establishment values with d.
func (d *Directory) filter(match func(*model.Establishment) bool) (*Directory, bool) {
	result := NewDirectory()
	for e := range d.All() {
		if match(e) {
			result.Insert(e)
		}
	}
	if result.Len() == 0 {
		return nil, false
	}
	result.establishments.Sort()
	return result, true
}
