// Package sqldb materializes SQL result sets as canonical frames. Postgres
// via lib/pq is the supported driver.
package sqldb

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"tableplot/domain/coercer"
	"tableplot/domain/frame"
)

// Connect opens and pings a Postgres connection
func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Table binds a query to a database handle. It implements the legacy
// conversion hook, so a table can be handed straight to plot construction
// and materializes lazily.
type Table struct {
	db      *sqlx.DB
	query   string
	args    []interface{}
	coercer *coercer.TypeCoercer
}

// NewTable creates a table over a query
func NewTable(db *sqlx.DB, query string, args ...interface{}) *Table {
	return &Table{
		db:      db,
		query:   query,
		args:    args,
		coercer: coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()),
	}
}

// Frame materializes the query result as a canonical frame
func (t *Table) Frame() (*frame.Frame, error) {
	return t.FrameContext(context.Background())
}

// FrameContext materializes the query result under the given context
func (t *Table) FrameContext(ctx context.Context) (*frame.Frame, error) {
	rows, err := t.db.QueryxContext(ctx, t.query, t.args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var records []map[string]interface{}
	for rows.Next() {
		record := make(map[string]interface{}, len(columns))
		if err := rows.MapScan(record); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(records), err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("result iteration failed: %w", err)
	}

	log.Printf("[sqldb] query materialized (%d columns, %d rows)", len(columns), len(records))
	return buildFrame(t.coercer, columns, records)
}

// buildFrame converts scanned records into a frame, preserving the result
// set's column order. Factored out so the mapping is testable without a
// live database. Drivers hand back []byte for text columns; the coercer
// normalizes those.
func buildFrame(tc *coercer.TypeCoercer, columns []string, records []map[string]interface{}) (*frame.Frame, error) {
	coerced := make([]map[string]frame.Value, len(records))
	for i, record := range records {
		row := make(map[string]frame.Value, len(record))
		for name, raw := range record {
			row[name] = tc.CoerceValue(raw)
		}
		coerced[i] = row
	}
	return frame.FromRecords(columns, coerced)
}
