package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"heatmap_loader/internal/heatmap"
)

// SQLiteDB is the portable sink for offline runs: a single database
// file, no server. The schema mirrors the Postgres staging table;
// there is no finalize step (no PostGIS).
type SQLiteDB struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a SQLite database file and ensures the
// positions table exists.
func OpenSQLite(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS adsb_temp (
			t       REAL NOT NULL,
			hex     TEXT NOT NULL,
			flight  TEXT,
			squawk  TEXT,
			lat     REAL NOT NULL,
			lon     REAL NOT NULL,
			alt     INTEGER NOT NULL,
			gs      REAL,
			type    INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (d *SQLiteDB) Close() error {
	return d.db.Close()
}

// AppendRows inserts a batch inside one transaction.
func (d *SQLiteDB) AppendRows(ctx context.Context, rows []heatmap.Record) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO adsb_temp (t, hex, flight, squawk, lat, lon, alt, gs, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.T, r.Hex, r.Flight, r.Squawk, r.Lat, r.Lon, int64(r.Alt), r.GS, int(r.Type)); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
