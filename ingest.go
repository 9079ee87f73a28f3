package sfinspect

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nao1215/sfinspect/domain/model"
)

// Rejection categories reported in LoadReport.ByCategory
const (
	CategoryFormat   = "format"
	CategoryRange    = "range"
	CategoryIdentity = "identity"
	CategoryOther    = "other"
)

// LoadReport summarizes one ingestion run.
type LoadReport struct {
	// RunID identifies the load in log lines; it is zero for reports of a
	// bare Ingester
	RunID uuid.UUID
	// Rows is the number of records seen, header included
	Rows int
	// Loaded is the number of inspections merged into the directory
	Loaded int
	// Skipped is the number of rows without inspection data
	Skipped int
	// Rejected is the number of rows dropped because they failed validation
	Rejected int
	// ByCategory breaks Rejected down by error category
	ByCategory map[string]int
}

// LogValue implements slog.LogValuer.
func (r LoadReport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", r.RunID.String()),
		slog.Int("rows", r.Rows),
		slog.Int("loaded", r.Loaded),
		slog.Int("skipped", r.Skipped),
		slog.Int("rejected", r.Rejected),
		slog.Int(CategoryFormat, r.ByCategory[CategoryFormat]),
		slog.Int(CategoryRange, r.ByCategory[CategoryRange]),
		slog.Int(CategoryIdentity, r.ByCategory[CategoryIdentity]),
	)
}

// Ingester merges records into a Directory one row at a time. A failing row
// never stops the ingestion: Ingest reports it to the caller and the report
// counts it, and the next row is processed as usual.
type Ingester struct {
	dir    *Directory
	logger *slog.Logger
	source string
	report LoadReport
}

// NewIngester creates an Ingester that merges into dir. A nil logger
// discards output.
func NewIngester(dir *Directory, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = discardLogger()
	}
	return &Ingester{
		dir:    dir,
		logger: logger,
		report: LoadReport{ByCategory: make(map[string]int)},
	}
}

// discardLogger returns a logger that drops every record
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setSource labels subsequent log lines with the input being read.
func (in *Ingester) setSource(name string) {
	in.source = name
}

// Ingest parses rec and merges it into the directory. It returns
// ErrNoInspectionData for rows without a score, or the validation error that
// caused the row to be rejected wrapped with the source and line.
func (in *Ingester) Ingest(line int, rec Record) error {
	in.report.Rows++

	row, err := parseRow(rec)
	if err == nil {
		err = in.merge(row)
	}
	switch {
	case err == nil:
		in.report.Loaded++
	case errors.Is(err, ErrNoInspectionData):
		in.report.Skipped++
		in.logger.Debug("row skipped", "source", in.source, "line", line, "reason", err)
	default:
		err = in.reject(line, err)
	}
	return err
}

// Reject counts a row that could not be read as a record at all, such as an
// overlong line, and returns the error wrapped with the source and line.
func (in *Ingester) Reject(line int, err error) error {
	in.report.Rows++
	return in.reject(line, err)
}

// reject records a rejected row in the report
func (in *Ingester) reject(line int, err error) error {
	in.report.Rejected++
	in.report.ByCategory[category(err)]++
	in.logger.Debug("row rejected", "source", in.source, "line", line, "reason", err)
	return NewErrorContext("ingest", in.source).WithLine(line).WithDetails(category(err) + " error").Error(err)
}

// Report returns the counts accumulated so far.
func (in *Ingester) Report() LoadReport {
	report := in.report
	report.ByCategory = make(map[string]int, len(in.report.ByCategory))
	for k, v := range in.report.ByCategory {
		report.ByCategory[k] = v
	}
	return report
}

// merge attaches the row's inspection to the establishment with the same
// identity, creating the establishment on first sight.
func (in *Ingester) merge(row inspectionRow) error {
	if e, ok := in.dir.Lookup(row.name, row.zip); ok {
		e.AddInspection(row.inspection)
		return nil
	}

	var opts []model.EstablishmentOption
	if row.address != "" && row.phone != "" {
		opts = append(opts, model.WithAddress(row.address), model.WithPhone(row.phone))
	}
	e, err := model.NewEstablishment(row.name, row.zip, opts...)
	if err != nil {
		return err
	}
	if !in.dir.Insert(e) {
		return fmt.Errorf("%w: %q, %s", ErrNotInserted, row.name, row.zip)
	}
	e.AddInspection(row.inspection)
	return nil
}

// inspectionRow is the part of a record that ingestion uses
type inspectionRow struct {
	name       string
	zip        string
	address    string
	phone      string
	inspection model.Inspection
}

// parseRow extracts and validates the inspection carried by rec.
func parseRow(rec Record) (inspectionRow, error) {
	// An empty score in the last column is dropped by the tokenizer
	if len(rec) == colScore {
		return inspectionRow{}, ErrNoInspectionData
	}
	if len(rec) < minFields {
		return inspectionRow{}, fmt.Errorf("%w: got %d, want at least %d", ErrTooFewFields, len(rec), minFields)
	}

	date := normalizeDate(firstWord(rec.field(colDate)))

	scoreText := rec.field(colScore)
	if scoreText == "" {
		return inspectionRow{}, ErrNoInspectionData
	}

	parsedDate, err := model.ParseDate(date)
	if err != nil {
		return inspectionRow{}, err
	}
	score, err := strconv.Atoi(scoreText)
	if err != nil {
		return inspectionRow{}, fmt.Errorf("%w: %q", ErrMalformedScore, scoreText)
	}

	risk := ""
	if len(rec) == riskFields {
		risk = rec.field(colRisk)
	}
	inspection, err := model.NewInspection(parsedDate, score, rec.field(colViolation), risk)
	if err != nil {
		return inspectionRow{}, err
	}

	return inspectionRow{
		name:       rec.field(colName),
		zip:        rec.field(colZip),
		address:    rec.field(colAddress),
		phone:      rec.field(colPhone),
		inspection: inspection,
	}, nil
}

// firstWord returns s up to its first space; the date column carries a
// time of day after the date.
func firstWord(s string) string {
	before, _, _ := strings.Cut(strings.TrimSpace(s), " ")
	return before
}

// normalizeDate zero-pads a one-digit month or day: "1/2/2019" becomes
// "01/02/2019".
func normalizeDate(s string) string {
	if strings.Index(s, "/") == 1 {
		s = "0" + s
	}
	if strings.LastIndex(s, "/") == 4 {
		s = s[:3] + "0" + s[3:]
	}
	return s
}

// category maps a rejection error onto a LoadReport category.
func category(err error) string {
	switch {
	case errors.Is(err, model.ErrFormat):
		return CategoryFormat
	case errors.Is(err, model.ErrRange):
		return CategoryRange
	case errors.Is(err, model.ErrIdentity):
		return CategoryIdentity
	default:
		return CategoryOther
	}
}
