package sfinspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/xuri/excelize/v2"

	"github.com/nao1215/sfinspect/domain/model"
)

const (
	// exportBaseName is the file name of an export without extensions
	exportBaseName = "inspections"
	// exportSheet is the worksheet name of an XLSX export
	exportSheet = "inspections"
	// colInspectionID holds "<business_id>_<n>" in an export
	colInspectionID = 10
)

// exportColumns is the header of an export, the same layout the loader reads
var exportColumns = []string{
	"business_id", "business_name", "business_address", "business_city", "business_state",
	"business_postal_code", "business_latitude", "business_longitude", "business_location", "business_phone_number",
	"inspection_id", "inspection_date", "inspection_score", "inspection_type", "violation_id",
	"violation_description", "risk_category",
}

// ExportOptions configures how a directory is written to a file.
//
// Example:
//
//	options := NewExportOptions().
//		WithFormat(FileTypeParquet).
//		WithCompression(CompressionZSTD)
//
//	path, err := Export(ctx, dir, "./output", options)
type ExportOptions struct {
	// Format specifies the output file format
	Format FileType
	// Compression specifies the compression type
	Compression CompressionType
}

// NewExportOptions creates default export options (CSV, no compression).
func NewExportOptions() ExportOptions {
	return ExportOptions{
		Format:      FileTypeCSV,
		Compression: CompressionNone,
	}
}

// WithFormat sets the output file format: CSV, XLSX or Parquet.
func (o ExportOptions) WithFormat(format FileType) ExportOptions {
	o.Format = format
	return o
}

// WithCompression adds compression to the output file. gzip, xz and zstd
// are supported; bzip2 can only be read.
func (o ExportOptions) WithCompression(compression CompressionType) ExportOptions {
	o.Compression = compression
	return o
}

// FileExtension returns the complete file extension including compression
func (o ExportOptions) FileExtension() string {
	return o.Format.extension() + o.Compression.Extension()
}

// exportRow is one inspection of one establishment
type exportRow struct {
	id         int
	seq        int
	e          *model.Establishment
	inspection model.Inspection
}

// fields renders the row in the column order of exportColumns. City, state
// and the other columns the loader ignores are left empty.
func (r exportRow) fields() []string {
	rec := make([]string, len(exportColumns))
	rec[0] = strconv.Itoa(r.id)
	rec[colName] = r.e.Name()
	rec[colAddress] = r.e.Address()
	rec[colZip] = r.e.Zip()
	rec[colPhone] = r.e.Phone()
	rec[colInspectionID] = fmt.Sprintf("%d_%d", r.id, r.seq)
	rec[colDate] = r.inspection.Date().String()
	rec[colScore] = strconv.Itoa(r.inspection.Score())
	rec[colViolation] = r.inspection.Violation()
	rec[colRisk] = r.inspection.Risk()
	return rec
}

// Export writes every inspection of dir to outputDir as one file named
// inspections with the extension of opts, for example inspections.csv.gz.
// The file uses the column layout the loader reads, so an export can be
// loaded again. It returns the path of the written file.
func Export(ctx context.Context, dir *Directory, outputDir string, opts ...ExportOptions) (path string, err error) {
	options := NewExportOptions()
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.Format == FileTypeUnsupported {
		return "", fmt.Errorf("%w: export format %s", ErrUnsupportedFormat, options.Format)
	}

	rows, err := exportRows(ctx, dir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path = filepath.Join(outputDir, exportBaseName+options.FileExtension())

	writer, cleanup, err := NewCompressionFactory().CreateWriterForFile(path, options.Compression)
	if err != nil {
		return "", NewErrorContext("export", path).Error(err)
	}
	defer func() {
		if closeErr := cleanup(); closeErr != nil && err == nil {
			err = NewErrorContext("export", path).Error(closeErr)
		}
	}()

	switch options.Format {
	case FileTypeXLSX:
		err = writeXLSX(writer, rows)
	case FileTypeParquet:
		err = writeParquet(writer, rows)
	default:
		err = writeCSV(writer, rows)
	}
	if err != nil {
		return "", NewErrorContext("export", path).Error(err)
	}
	return path, nil
}

// exportRows flattens dir into one row per inspection, establishments in
// directory order and inspections by date
func exportRows(ctx context.Context, dir *Directory) ([]exportRow, error) {
	rows := make([]exportRow, 0, dir.InspectionCount())
	id := 0
	for e := range dir.All() {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		id++
		for i, inspection := range e.Inspections() {
			rows = append(rows, exportRow{id: id, seq: i + 1, e: e, inspection: inspection})
		}
	}
	return rows, nil
}

// writeCSV writes a header line and one line per row
func writeCSV(w io.Writer, rows []exportRow) error {
	var b strings.Builder
	b.WriteString(strings.Join(exportColumns, string(csvDelimiter)) + "\n")
	for _, row := range rows {
		fields := row.fields()
		for i, v := range fields {
			fields[i] = escapeCSVValue(v)
		}
		b.WriteString(strings.Join(fields, string(csvDelimiter)) + "\n")
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// escapeCSVValue quotes a value that holds a delimiter or surrounding
// whitespace. Quote characters cannot be escaped in the input format and
// are dropped.
func escapeCSVValue(value string) string {
	value = strings.Map(func(r rune) rune {
		if isQuote(r) {
			return -1
		}
		return r
	}, value)

	if strings.ContainsRune(value, csvDelimiter) || strings.TrimSpace(value) != value {
		return `"` + value + `"`
	}
	return value
}

// writeXLSX writes a workbook with a single sheet. Scores are stored as
// numbers, every other cell as text.
func writeXLSX(w io.Writer, rows []exportRow) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]any, len(exportColumns))
	for i, name := range exportColumns {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		fields := row.fields()
		values := make([]any, len(fields))
		for j, v := range fields {
			values[j] = v
		}
		values[colScore] = row.inspection.Score()

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

// writeParquet writes one record batch. inspection_score is an int64
// column, all other columns are strings.
func writeParquet(w io.Writer, rows []exportRow) error {
	fields := make([]arrow.Field, len(exportColumns))
	for i, name := range exportColumns {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String}
	}
	fields[colScore].Type = arrow.PrimitiveTypes.Int64
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	for _, row := range rows {
		for i, v := range row.fields() {
			switch b := builder.Field(i).(type) {
			case *array.Int64Builder:
				b.Append(int64(row.inspection.Score()))
			case *array.StringBuilder:
				b.Append(v)
			default:
				return fmt.Errorf("unexpected parquet column type %s", b.Type())
			}
		}
	}
	record := builder.NewRecord()
	defer record.Release()

	// The parquet writer closes its sink; keep the compressor open for cleanup
	sink := struct{ io.Writer }{w}
	fw, err := pqarrow.NewFileWriter(schema, sink, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := fw.Write(record); err != nil {
		return errors.Join(fmt.Errorf("failed to write parquet: %w", err), fw.Close())
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
