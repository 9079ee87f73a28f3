package sfinspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sfinspect/domain/model"
)

const (
	// summaryRule separates an establishment's name from its details
	summaryRule = "-----------------------------------"
	// summaryLabelWidth is the column width of the detail labels
	summaryLabelWidth = 20
)

// WriteSummary writes the display block of one establishment: its name, a
// rule, address, zip and phone, and the inspections of its two most recent
// inspection days, newest first.
func WriteSummary(w io.Writer, e *model.Establishment) error {
	var b strings.Builder
	b.WriteString(e.Name() + "\n")
	b.WriteString(summaryRule + "\n")
	writeDetail(&b, "address", e.Address())
	writeDetail(&b, "zip", e.Zip())
	writeDetail(&b, "phone", e.Phone())
	b.WriteString("recent inspection results:\n")
	for _, inspection := range e.RecentInspections() {
		b.WriteString(inspection.String() + "\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write summary of %s: %w", e.Name(), err)
	}
	return nil
}

// WriteSummaries writes the summary of every establishment of dir in
// directory order, separated by blank lines.
func WriteSummaries(w io.Writer, dir *Directory) error {
	first := true
	for e := range dir.All() {
		if !first {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("failed to write summary separator: %w", err)
			}
		}
		first = false
		if err := WriteSummary(w, e); err != nil {
			return err
		}
	}
	return nil
}

// writeDetail writes one aligned "label :  value" line; an absent value
// leaves only the colon.
func writeDetail(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%-*s", summaryLabelWidth, label)
	if value == "" {
		b.WriteString(":  \n")
		return
	}
	b.WriteString(" :  " + value + "\n")
}
