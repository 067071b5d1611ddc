package db

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"climate-server/internal/config"
	"climate-server/internal/modules/climate/types"
)

const datasetSchema = `
CREATE TABLE measurement (id INTEGER PRIMARY KEY, station TEXT, date TEXT, prcp FLOAT, tobs FLOAT);
CREATE TABLE station (id INTEGER PRIMARY KEY, station TEXT, name TEXT, latitude FLOAT, longitude FLOAT, elevation FLOAT);
INSERT INTO measurement (station, date, prcp, tobs) VALUES ('USC00519397', '2010-01-01', 0.08, 65.0);
`

// writeDataset creates a SQLite file with the given DDL and returns its path.
func writeDataset(t *testing.T, ddl string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hawaii.sqlite")
	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = conn.Close() }()
	if _, err := conn.Exec(ddl); err != nil {
		t.Fatalf("exec ddl: %v", err)
	}
	return path
}

func testConfig(path string, level slog.Level) config.Config {
	return config.Config{
		LogLevel:     level,
		Driver:       "sqlite3",
		Path:         path,
		MaxOpenConns: 2,
		MaxIdleConns: 2,
	}
}

func TestOpen_ReadOnlyDataset(t *testing.T) {
	path := writeDataset(t, datasetSchema)

	conn, err := Open(context.Background(), testConfig(path, slog.LevelInfo), slog.Default())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = Close(conn) }()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM measurement`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d; want 1", n)
	}

	if _, err := conn.Exec(`DELETE FROM measurement`); err == nil {
		t.Fatal("write succeeded on read-only store")
	}
}

func TestOpen_DebugUsesLoggingConnector(t *testing.T) {
	path := writeDataset(t, datasetSchema)
	handler := &captureHandler{}

	conn, err := Open(context.Background(), testConfig(path, slog.LevelDebug), slog.New(handler))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = Close(conn) }()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM station`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if len(handler.recordsFor(t, "sql")) == 0 {
		t.Fatal("expected sql log records at debug level")
	}
}

func TestOpen_MissingFileIsStoreUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "hawaii.sqlite")

	_, err := Open(context.Background(), testConfig(path, slog.LevelInfo), slog.Default())
	if !errors.Is(err, types.ErrStoreUnavailable) {
		t.Fatalf("Open err = %v; want ErrStoreUnavailable", err)
	}
}

func TestClose_Nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Fatalf("Close(nil) = %v; want nil", err)
	}
}

func TestBuildDSN(t *testing.T) {
	path := writeDataset(t, datasetSchema)

	t.Run("explicit dsn wins", func(t *testing.T) {
		got, err := buildDSN(config.Config{DSN: "file::memory:", Path: path})
		if err != nil || got != "file::memory:" {
			t.Fatalf("buildDSN = %q, %v", got, err)
		}
	})

	t.Run("plain path gets read-only params", func(t *testing.T) {
		got, err := buildDSN(config.Config{Path: path})
		if err != nil {
			t.Fatalf("buildDSN: %v", err)
		}
		if !strings.HasPrefix(got, "file:"+path+"?") || !strings.Contains(got, "mode=ro") || !strings.Contains(got, "_query_only=true") {
			t.Fatalf("buildDSN = %q", got)
		}
	})

	t.Run("file uri with params is appended to", func(t *testing.T) {
		got, err := buildDSN(config.Config{Path: "file:" + path + "?cache=shared"})
		if err != nil {
			t.Fatalf("buildDSN: %v", err)
		}
		if !strings.Contains(got, "?cache=shared&mode=ro") {
			t.Fatalf("buildDSN = %q", got)
		}
	})
}

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name    string
		ddl     string
		wantErr string
	}{
		{name: "matching schema", ddl: datasetSchema},
		{
			name:    "extra columns allowed",
			ddl:     datasetSchema + `ALTER TABLE measurement ADD COLUMN tmax FLOAT;`,
			wantErr: "",
		},
		{
			name:    "missing table",
			ddl:     `CREATE TABLE measurement (station TEXT, date TEXT, prcp FLOAT, tobs FLOAT);`,
			wantErr: "table station not found",
		},
		{
			name: "missing column",
			ddl: `CREATE TABLE measurement (station TEXT, date TEXT, prcp FLOAT);
				  CREATE TABLE station (station TEXT, name TEXT, latitude FLOAT, longitude FLOAT, elevation FLOAT);`,
			wantErr: "missing columns: tobs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDataset(t, tt.ddl)
			conn, err := Open(context.Background(), testConfig(path, slog.LevelInfo), slog.Default())
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer func() { _ = Close(conn) }()

			err = ValidateSchema(context.Background(), conn)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateSchema = %v; want nil", err)
				}
				return
			}
			if !errors.Is(err, types.ErrStoreUnavailable) {
				t.Fatalf("ValidateSchema = %v; want ErrStoreUnavailable", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("ValidateSchema = %q; want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
