package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"heatmap_loader/internal/heatmap"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// DefaultClickHouseConfig returns local development settings.
func DefaultClickHouseConfig() ClickHouseConfig {
	return ClickHouseConfig{
		Host:     "localhost",
		Port:     9000,
		Database: "adsb",
		User:     "default",
		Password: "",
	}
}

// ClickHouseDB is the analytics sink: the same nine-field rows in a
// MergeTree table partitioned by month, ordered for per-aircraft track
// scans. There is no staging/finalize split here; rows land directly.
type ClickHouseDB struct {
	conn driver.Conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	// Test the connection.
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the positions table.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	err := d.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS heatmap_positions (
			t       Float64,
			hex     LowCardinality(String),
			flight  Nullable(String),
			squawk  LowCardinality(Nullable(String)),
			lat     Float64,
			lon     Float64,
			alt     Int64,
			gs      Nullable(Float64),
			type    UInt8
		)
		ENGINE = MergeTree()
		PARTITION BY toYYYYMM(toDateTime(t))
		ORDER BY (hex, t)
		SETTINGS index_granularity = 8192
	`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// AppendRows stores a batch of rows.
func (d *ClickHouseDB) AppendRows(ctx context.Context, rows []heatmap.Record) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := d.conn.PrepareBatch(ctx, `
		INSERT INTO heatmap_positions (t, hex, flight, squawk, lat, lon, alt, gs, type)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		if err := batch.Append(r.T, r.Hex, r.Flight, r.Squawk, r.Lat, r.Lon, int64(r.Alt), r.GS, uint8(r.Type)); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}
