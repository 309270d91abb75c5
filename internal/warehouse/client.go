package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/dataepl/epl-ingestion/internal/config"
)

// Status is a copy-history load status as reported by the warehouse.
type Status string

const (
	StatusLoaded          Status = "LOADED"
	StatusLoadFailed      Status = "LOAD_FAILED"
	StatusPartiallyLoaded Status = "PARTIALLY_LOADED"
)

// Terminal reports whether the status ends polling: either the load
// completed or it failed in a way that retrying the gate cannot fix.
func (s Status) Terminal() bool {
	switch s {
	case StatusLoaded, StatusLoadFailed, StatusPartiallyLoaded:
		return true
	}
	return false
}

// LoadRecord is one row of the warehouse's copy-history catalog.
type LoadRecord struct {
	FileName     string
	Status       Status
	RowCount     int64
	LastLoadTime time.Time
}

// Client queries the warehouse's copy-history catalog through database/sql.
type Client struct {
	db *sql.DB
}

// Open connects to the warehouse using the gosnowflake driver.
// The caller owns the connection and must Close it on every exit path.
func Open(cfg *config.GateConfig) (*Client, error) {
	dsn, err := sf.DSN(&sf.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Role:      cfg.Role,
		Warehouse: cfg.Warehouse,
		Database:  cfg.Database,
		Schema:    "RAW",
	})
	if err != nil {
		return nil, fmt.Errorf("build warehouse DSN: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("open warehouse connection: %w", err)
	}
	return &Client{db: db}, nil
}

// NewClient wraps an existing database handle. Used by tests.
func NewClient(db *sql.DB) *Client {
	return &Client{db: db}
}

const copyHistoryQuery = `
SELECT file_name, status, row_count, last_load_time
FROM TABLE(INFORMATION_SCHEMA.COPY_HISTORY(
    TABLE_NAME=>?,
    START_TIME=>DATEADD('HOUR', ?, CURRENT_TIMESTAMP())
))
WHERE file_name ILIKE ?
ORDER BY last_load_time DESC
LIMIT 1`

// LatestLoad returns the most recent copy-history row for the table whose
// file name contains fileTail (case-insensitive), within the lookback
// window. Returns nil when no matching row exists yet.
func (c *Client) LatestLoad(ctx context.Context, table, fileTail string, lookbackHours int) (*LoadRecord, error) {
	var rec LoadRecord
	var status string

	err := c.db.QueryRowContext(ctx, copyHistoryQuery,
		table, -lookbackHours, "%"+fileTail+"%",
	).Scan(&rec.FileName, &status, &rec.RowCount, &rec.LastLoadTime)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query copy history: %w", err)
	}

	rec.Status = Status(strings.ToUpper(status))
	return &rec, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}
