package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dataepl/epl-ingestion/internal/config"
	"github.com/dataepl/epl-ingestion/internal/exitcode"
	"github.com/dataepl/epl-ingestion/internal/gate"
	"github.com/dataepl/epl-ingestion/internal/warehouse"
)

func main() {
	// Configure the global logger
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	// Parse CLI flags
	table := flag.String("table", "", "Target table, e.g. RAW.SOLUTION_BASE")
	file := flag.String("file", "", "File name or path to match in copy history (suffix match)")
	timeoutSec := flag.Int("timeout", 1800, "Seconds to wait before giving up (default 30m)")
	lookbackHours := flag.Int("lookback-hours", 24, "Copy-history window in hours")
	flag.Parse()

	if *table == "" {
		fmt.Fprintln(os.Stderr, "Usage: --table is required")
		os.Exit(exitcode.ConfigError)
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: --file is required")
		os.Exit(exitcode.ConfigError)
	}

	// Ensure environment variables are loaded
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load env vars", "error", err)
	}

	cfg, err := config.LoadGate()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(exitcode.ConfigError)
	}

	os.Exit(run(cfg, *table, *file, time.Duration(*timeoutSec)*time.Second, *lookbackHours))
}

// run holds the connection for the whole poll and releases it on every
// exit path, including failures.
func run(cfg *config.GateConfig, table, file string, timeout time.Duration, lookbackHours int) int {
	client, err := warehouse.Open(cfg)
	if err != nil {
		slog.Error("failed to open warehouse connection", "error", err)
		return exitcode.CatalogError
	}
	defer client.Close()

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	result, err := gate.New(client, timeout).Wait(ctx, table, file, lookbackHours)
	if err != nil {
		slog.Error("copy-history query failed", "error", err)
		return exitcode.CatalogError
	}

	switch result.Outcome {
	case gate.Passed:
		rec := result.LastSeen
		fmt.Printf("Gate passed: %s status=%s rows=%d at %s\n",
			rec.FileName, rec.Status, rec.RowCount, rec.LastLoadTime.Format(time.RFC3339))
		return exitcode.Success
	case gate.Failed:
		rec := result.LastSeen
		fmt.Fprintf(os.Stderr, "Gate failed: %s status=%s\n", rec.FileName, rec.Status)
		return exitcode.LoadFailed
	default:
		if result.LastSeen != nil {
			fmt.Fprintf(os.Stderr, "Timeout waiting for %s. Last seen: %s status=%s at %s\n",
				file, result.LastSeen.FileName, result.LastSeen.Status,
				result.LastSeen.LastLoadTime.Format(time.RFC3339))
		} else {
			fmt.Fprintf(os.Stderr, "Timeout waiting for %s. Last seen: none\n", file)
		}
		return exitcode.Timeout
	}
}
