package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"climate-server/internal/modules/climate/types"
)

// Table is the statically declared shape the service reads from. Extra
// columns in the store are allowed.
type Table struct {
	Name    string
	Columns []string
}

// Schema lists the tables and columns the climate queries depend on.
var Schema = []Table{
	{Name: "measurement", Columns: []string{"station", "date", "prcp", "tobs"}},
	{Name: "station", Columns: []string{"station", "name", "latitude", "longitude", "elevation"}},
}

// ValidateSchema checks that every table in Schema exists with its required
// columns. A mismatch is reported as types.ErrStoreUnavailable.
func ValidateSchema(ctx context.Context, db *sql.DB) error {
	for _, table := range Schema {
		have, err := tableColumns(ctx, db, table.Name)
		if err != nil {
			return fmt.Errorf("%w: inspect table %s: %w", types.ErrStoreUnavailable, table.Name, err)
		}
		if len(have) == 0 {
			return fmt.Errorf("%w: table %s not found", types.ErrStoreUnavailable, table.Name)
		}
		var missing []string
		for _, col := range table.Columns {
			if !have[col] {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: table %s missing columns: %s",
				types.ErrStoreUnavailable, table.Name, strings.Join(missing, ", "))
		}
		slog.Debug("schema table ok", "table", table.Name, "columns", len(have))
	}
	return nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close table_info rows", "table", table, "error", err)
		}
	}()
	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[strings.ToLower(name)] = true
	}
	return out, rows.Err()
}
