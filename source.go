package sfinspect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/xuri/excelize/v2"
)

// parquetBatchRows is the number of rows decoded per Arrow record batch
const parquetBatchRows = 1024

// recordHandler receives each decoded row with its 1-based position in the input
type recordHandler func(line int, rec Record) error

// sourceOptions tunes how records are read from an input
type sourceOptions struct {
	// sheet selects the XLSX worksheet; empty means the first sheet
	sheet string
	// badLine receives CSV lines that cannot be tokenized. When nil such a
	// line stops the read with its error.
	badLine func(line int, err error)
}

// readRecords decodes every row of reader according to fileType and hands it
// to fn. The reader must already be decompressed. Cancellation of ctx is
// checked between rows.
func readRecords(ctx context.Context, reader io.Reader, fileType FileType, opts sourceOptions, fn recordHandler) error {
	switch fileType {
	case FileTypeCSV:
		return readCSVRecords(ctx, reader, opts.badLine, fn)
	case FileTypeXLSX:
		return readXLSXRecords(ctx, reader, opts.sheet, fn)
	case FileTypeParquet:
		return readParquetRecords(ctx, reader, fn)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileType)
	}
}

// checkContext returns ErrContextCancelled wrapping the cause once ctx is done
func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrContextCancelled, err)
	}
	return nil
}

// readCSVRecords tokenizes the input line by line
func readCSVRecords(ctx context.Context, reader io.Reader, badLine func(int, error), fn recordHandler) error {
	lr := NewLineReader(reader)
	for {
		if err := checkContext(ctx); err != nil {
			return err
		}
		rec, err := lr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, ErrLineTooLong) && badLine != nil {
			badLine(lr.Line(), err)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read line %d: %w", lr.Line()+1, err)
		}
		if err := fn(lr.Line(), rec); err != nil {
			return err
		}
	}
}

// readXLSXRecords walks one worksheet. Every row is a record; rows are padded
// with empty cells to the width of the first row because excelize drops
// trailing empty cells.
func readXLSXRecords(ctx context.Context, reader io.Reader, sheet string, fn recordHandler) error {
	xlsxFile, err := excelize.OpenReader(reader)
	if err != nil {
		return fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer func() {
		_ = xlsxFile.Close() // Ignore close error
	}()

	if sheet == "" {
		sheetNames := xlsxFile.GetSheetList()
		if len(sheetNames) == 0 {
			return errors.New("no sheets found in XLSX file")
		}
		sheet = sheetNames[0]
	}

	iter, err := xlsxFile.Rows(sheet)
	if err != nil {
		return fmt.Errorf("failed to open rows iterator for sheet %s: %w", sheet, err)
	}
	defer iter.Close()

	var (
		width int
		line  int
	)
	for iter.Next() {
		if err := checkContext(ctx); err != nil {
			return err
		}
		line++

		row, err := iter.Columns()
		if err != nil {
			return fmt.Errorf("failed to read row %d in sheet %s: %w", line, sheet, err)
		}
		if line == 1 {
			width = len(row)
		}
		for len(row) < width {
			row = append(row, "")
		}
		if err := fn(line, newRecord(row)); err != nil {
			return err
		}
	}
	return iter.Error()
}

// readParquetRecords decodes a Parquet file through Arrow. Columns keep their
// schema order and null cells become empty fields.
func readParquetRecords(ctx context.Context, reader io.Reader, fn recordHandler) error {
	// Read all data into memory (Parquet requires random access)
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read parquet data: %w", err)
	}
	if len(data) == 0 {
		return errors.New("empty parquet file")
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create parquet reader from bytes: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, nil)
	if err != nil {
		return fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return fmt.Errorf("failed to read table: %w", err)
	}
	defer table.Release()

	tableReader := array.NewTableReader(table, parquetBatchRows)
	defer tableReader.Release()

	line := 0
	for tableReader.Next() {
		batch := tableReader.Record()
		for i := range int(batch.NumRows()) {
			if err := checkContext(ctx); err != nil {
				return err
			}
			line++

			row := make(Record, batch.NumCols())
			for j, col := range batch.Columns() {
				row[j] = arrowValue(col, i)
			}
			if err := fn(line, row); err != nil {
				return err
			}
		}
	}

	if err := tableReader.Err(); err != nil {
		return fmt.Errorf("error reading table records: %w", err)
	}
	return nil
}

// arrowValue renders one cell of an Arrow column as text
func arrowValue(col arrow.Array, i int) string {
	if col.IsNull(i) {
		return ""
	}
	return col.ValueStr(i)
}
