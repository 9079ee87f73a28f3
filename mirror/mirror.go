// Package mirror copies a loaded inspection directory into an in-memory
// SQLite database so it can be explored with ad-hoc SQL.
//
// The database has two tables:
//
//	establishments(id, name, zip, address, phone)
//	inspections(establishment_id, inspected_on, score, violation, risk)
//
// inspected_on holds ISO dates (YYYY-MM-DD) so it sorts and compares as text.
// Empty address, phone, violation and risk values are stored as NULL.
package mirror

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/nao1215/sfinspect"
	"github.com/nao1215/sfinspect/domain/model"
)

// driverName is the database/sql driver registered by modernc.org/sqlite
const driverName = "sqlite"

// schema creates the mirror tables, one statement per entry
var schema = []string{
	`CREATE TABLE establishments (
		id      INTEGER PRIMARY KEY,
		name    TEXT NOT NULL,
		zip     TEXT NOT NULL,
		address TEXT,
		phone   TEXT
	)`,
	`CREATE TABLE inspections (
		establishment_id INTEGER NOT NULL REFERENCES establishments(id),
		inspected_on     TEXT NOT NULL,
		score            INTEGER NOT NULL,
		violation        TEXT,
		risk             TEXT
	)`,
	`CREATE INDEX idx_establishments_zip ON establishments(zip)`,
	`CREATE INDEX idx_inspections_establishment ON inspections(establishment_id, inspected_on)`,
}

const (
	insertEstablishment = `INSERT INTO establishments (name, zip, address, phone) VALUES (?, ?, ?, ?)`
	insertInspection    = `INSERT INTO inspections (establishment_id, inspected_on, score, violation, risk) VALUES (?, ?, ?, ?, ?)`
)

// Mirror is a read-mostly SQL view of a Directory.
type Mirror struct {
	db *sql.DB
}

// Result holds the outcome of a query with every value rendered as text.
type Result struct {
	Columns []string
	Rows    [][]string
}

// New opens an in-memory database and copies every establishment and
// inspection of dir into it.
func New(ctx context.Context, dir *sfinspect.Directory) (*Mirror, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// Every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Join(err, db.Close())
	}

	m := &Mirror{db: db}
	if err := m.createSchema(ctx); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	if err := m.copyDirectory(ctx, dir); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return m, nil
}

// createSchema creates the tables and indexes
func (m *Mirror) createSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// copyDirectory inserts dir in one transaction using prepared statements
func (m *Mirror) copyDirectory(ctx context.Context, dir *sfinspect.Directory) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("failed to rollback: %w", rbErr))
		}
	}()

	establishmentStmt, err := tx.PrepareContext(ctx, insertEstablishment)
	if err != nil {
		return fmt.Errorf("failed to prepare establishment insert: %w", err)
	}
	defer establishmentStmt.Close()

	inspectionStmt, err := tx.PrepareContext(ctx, insertInspection)
	if err != nil {
		return fmt.Errorf("failed to prepare inspection insert: %w", err)
	}
	defer inspectionStmt.Close()

	for e := range dir.All() {
		if err := insertEstablishmentRows(ctx, establishmentStmt, inspectionStmt, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertEstablishmentRows inserts one establishment followed by its inspections
func insertEstablishmentRows(ctx context.Context, establishmentStmt, inspectionStmt *sql.Stmt, e *model.Establishment) error {
	res, err := establishmentStmt.ExecContext(ctx, e.Name(), e.Zip(), nullString(e.Address()), nullString(e.Phone()))
	if err != nil {
		return fmt.Errorf("failed to insert establishment %s: %w", e.Name(), err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read id of establishment %s: %w", e.Name(), err)
	}

	for _, inspection := range e.Inspections() {
		if _, err := inspectionStmt.ExecContext(ctx,
			id,
			inspection.Date().Time().Format(time.DateOnly),
			inspection.Score(),
			nullString(inspection.Violation()),
			nullString(inspection.Risk()),
		); err != nil {
			return fmt.Errorf("failed to insert inspection of %s: %w", e.Name(), err)
		}
	}
	return nil
}

// nullString maps the empty string to NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Query runs q and collects every row. NULL values are rendered as "NULL".
func (m *Mirror) Query(ctx context.Context, q string) (*Result, error) {
	rows, err := m.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	result := &Result{Columns: columns, Rows: make([][]string, 0)}
	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return result, nil
}

// formatValue renders a scanned value
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

// Close releases the database.
func (m *Mirror) Close() error {
	return m.db.Close()
}
