package gate

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dataepl/epl-ingestion/internal/warehouse"
)

// Catalog provides read access to the warehouse's copy-history log.
type Catalog interface {
	LatestLoad(ctx context.Context, table, fileTail string, lookbackHours int) (*warehouse.LoadRecord, error)
}

// Outcome is the gate's terminal verdict.
type Outcome int

const (
	Passed Outcome = iota
	Failed
	TimedOut
)

// Result reports the verdict plus the last copy-history row observed,
// which may be nil when the file never appeared in the window.
type Result struct {
	Outcome  Outcome
	LastSeen *warehouse.LoadRecord
}

// Poller blocks until the target file's load reaches a terminal status or
// the wall-clock timeout elapses.
type Poller struct {
	catalog Catalog

	pollInterval time.Duration
	timeout      time.Duration
}

func New(catalog Catalog, timeout time.Duration) *Poller {
	return &Poller{
		catalog:      catalog,
		pollInterval: 10 * time.Second,
		timeout:      timeout,
	}
}

// Wait polls the catalog for the file's most recent load record. The file
// argument may be a full path; only its final segment is matched, as a
// case-insensitive substring of the catalog's file_name column.
// Query errors abort immediately; LOAD_FAILED and PARTIALLY_LOADED are
// terminal failures; everything else keeps polling.
func (p *Poller) Wait(ctx context.Context, table, file string, lookbackHours int) (Result, error) {
	fileTail := file
	if idx := strings.LastIndex(file, "/"); idx >= 0 {
		fileTail = file[idx+1:]
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	var lastSeen *warehouse.LoadRecord
	for {
		rec, err := p.catalog.LatestLoad(ctx, table, fileTail, lookbackHours)
		if err != nil {
			// A timeout firing mid-query reads as a query error; report it
			// as the gate timing out instead.
			if ctx.Err() != nil {
				return Result{Outcome: TimedOut, LastSeen: lastSeen}, nil
			}
			return Result{LastSeen: lastSeen}, err
		}
		if rec != nil {
			lastSeen = rec
			switch rec.Status {
			case warehouse.StatusLoaded:
				return Result{Outcome: Passed, LastSeen: rec}, nil
			case warehouse.StatusLoadFailed, warehouse.StatusPartiallyLoaded:
				return Result{Outcome: Failed, LastSeen: rec}, nil
			default:
				slog.InfoContext(ctx, "load not terminal yet", "file", fileTail, "status", rec.Status)
			}
		} else {
			slog.InfoContext(ctx, "file not in copy history yet", "file", fileTail, "table", table)
		}

		select {
		case <-ctx.Done():
			return Result{Outcome: TimedOut, LastSeen: lastSeen}, nil
		case <-ticker.C:
		}
	}
}
