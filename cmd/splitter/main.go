package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dataepl/epl-ingestion/internal/api"
	"github.com/dataepl/epl-ingestion/internal/config"
	"github.com/dataepl/epl-ingestion/internal/splitter"
	"github.com/dataepl/epl-ingestion/internal/storage"
)

func main() {
	// Initialize structured logger (JSON to stdout)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load env vars", "error", err)
	}

	cfg, err := config.LoadSplitter()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.NewBlobClient(ctx, storage.BlobConfig{
		Endpoint:  cfg.Endpoint(),
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Container: cfg.Container,
		UseSSL:    cfg.UseSSL,
	})
	if err != nil {
		slog.Error("failed to initialize storage client", "error", err)
		os.Exit(1)
	}
	slog.Info("splitter configured",
		"endpoint", store.Endpoint(), "container", cfg.Container,
		"accepted_sheets", cfg.AcceptedSheets)

	svc := splitter.NewService(store, cfg.AcceptedSheets)

	mux := http.NewServeMux()
	api.NewHandler(svc.Process).WithDiag(store, cfg.Container).RegisterRoutes(mux)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second, // the archive-copy wait alone may take 60s
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("starting splitter", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down splitter")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("splitter stopped")
}
