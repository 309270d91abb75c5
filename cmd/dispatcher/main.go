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
	"github.com/dataepl/epl-ingestion/internal/dispatch"
	"github.com/dataepl/epl-ingestion/internal/github"
)

func main() {
	// Initialize structured logger (JSON to stdout)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load env vars", "error", err)
	}

	// Missing owner/repo/token fails here, before any event arrives.
	cfg, err := config.LoadDispatcher()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("dispatcher configured",
		"owner", cfg.Owner, "repo", cfg.Repo,
		"path_begins", cfg.PathBegins, "path_ends", cfg.PathEnds)

	client := github.NewClient(cfg.APIBaseURL, cfg.Owner, cfg.Repo, cfg.Token)
	svc := dispatch.NewService(client, cfg.PathBegins, cfg.PathEnds)

	mux := http.NewServeMux()
	api.NewHandler(svc.Handle).RegisterRoutes(mux)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second, // dispatch call may take up to 30s
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("starting dispatcher", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down dispatcher")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("dispatcher stopped")
}
