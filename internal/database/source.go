// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package database

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/affinity/internal/config"
)

// relation returns the FROM expression that reads one source table.
func relation(src *config.SourceConfig, name string) (string, error) {
	loc := src.Location(name)
	switch src.Format {
	case config.SourceParquet:
		return fmt.Sprintf("read_parquet(%s)", quoteLiteral(loc)), nil
	case config.SourceCSV:
		return fmt.Sprintf("read_csv(%s, header = true)", quoteLiteral(loc)), nil
	case config.SourceTable:
		return quoteIdent(loc), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, src.Format)
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// columns maps lowercased column names to their names in the source.
type columns map[string]string

// describe lists the columns of a relation.
func (db *DB) describe(ctx context.Context, rel string) (columns, error) {
	ctx, cancel := context.WithTimeout(ctx, db.queryTimeout())
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, "DESCRIBE SELECT * FROM "+rel)
	if err != nil {
		return nil, fmt.Errorf("describe: %w", err)
	}
	defer closeWithLog(rows, "describe rows")

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("describe columns: %w", err)
	}

	// column_name comes first; the remaining DESCRIBE fields are ignored.
	dest := make([]interface{}, len(names))
	for i := range dest {
		dest[i] = new(interface{})
	}

	cols := make(columns)
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan describe row: %w", err)
		}
		name, ok := (*dest[0].(*interface{})).(string)
		if !ok {
			continue
		}
		cols[strings.ToLower(name)] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describe rows: %w", err)
	}
	return cols, nil
}

func (c columns) has(name string) bool {
	_, ok := c[name]
	return ok
}

// require returns ErrMissingColumn naming every absent column.
func (c columns) require(names ...string) error {
	var missing []string
	for _, n := range names {
		if !c.has(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
}

// expr casts a column to typ, or yields a typed NULL when the column is absent.
func (c columns) expr(name, typ string) string {
	actual, ok := c[name]
	if !ok {
		return fmt.Sprintf("CAST(NULL AS %s)", typ)
	}
	return fmt.Sprintf("CAST(%s AS %s)", quoteIdent(actual), typ)
}
