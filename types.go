package sfinspect

// Record is one input row as an ordered slice of field values.
type Record []string

// newRecord wraps a row of cell values.
func newRecord(r []string) Record {
	return Record(r)
}

// field returns the value at index i, or "" when the row is shorter.
func (r Record) field(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Column positions of an inspection row (0-indexed).
const (
	colName      = 1
	colAddress   = 2
	colZip       = 5
	colPhone     = 9
	colDate      = 11
	colScore     = 12
	colViolation = 15
	colRisk      = 16

	// minFields is the shortest row that carries a score. Violation and risk
	// are optional trailing columns.
	minFields = colScore + 1
	// riskFields is the exact row length that carries a risk category
	riskFields = colRisk + 1
)
