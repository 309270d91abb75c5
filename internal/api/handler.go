package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dataepl/epl-ingestion/internal/event"
)

// EventHandlerFunc processes one storage notification.
type EventHandlerFunc func(ctx context.Context, n event.Notification) error

// DiagStore is the storage surface the diagnostics endpoint needs.
type DiagStore interface {
	Endpoint() string
	List(ctx context.Context, limit int) ([]string, error)
}

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	process   EventHandlerFunc
	diagStore DiagStore
	container string
}

// NewHandler creates a Handler forwarding events to process.
func NewHandler(process EventHandlerFunc) *Handler {
	return &Handler{process: process}
}

// WithDiag enables the GET /api/diag troubleshooting endpoint.
func (h *Handler) WithDiag(store DiagStore, container string) *Handler {
	h.diagStore = store
	h.container = container
	return h
}

// RegisterRoutes attaches all routes to the provided mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/events", h.handleEvents)
	mux.HandleFunc("GET /health", h.handleHealth)
	if h.diagStore != nil {
		mux.HandleFunc("GET /api/diag", h.handleDiag)
	}
}

// handleHealth returns 204 No Content for liveness checks.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// handleEvents decodes a notification batch, answers subscription
// handshakes, and runs every blob event through the processor. A processing
// error maps to 500 so the notification service redelivers.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	events, err := event.Parse(body)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to parse event payload", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for _, n := range events {
		if n.IsValidation() {
			slog.InfoContext(r.Context(), "answering subscription validation", "event_id", n.ID)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(event.ValidationResponse{ValidationResponse: n.Data.ValidationCode})
			return
		}

		invocationID := uuid.NewString()
		logger := slog.With("invocation_id", invocationID, "event_id", n.ID, "subject", n.Subject)
		logger.InfoContext(r.Context(), "handling notification", "event_type", n.EventType)

		if err := h.process(r.Context(), n); err != nil {
			logger.ErrorContext(r.Context(), "notification handling failed", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
}

type diagResponse struct {
	ServiceURI  string   `json:"service_uri"`
	Container   string   `json:"container"`
	SampleBlobs []string `json:"sample_blobs"`
}

// handleDiag reports the resolved storage endpoint and a short object
// sample, for operational troubleshooting only.
func (h *Handler) handleDiag(w http.ResponseWriter, r *http.Request) {
	names, err := h.diagStore.List(r.Context(), 5)
	if err != nil {
		slog.ErrorContext(r.Context(), "diag failed", "error", err)
		http.Error(w, fmt.Sprintf("Diag error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(diagResponse{
		ServiceURI:  h.diagStore.Endpoint(),
		Container:   h.container,
		SampleBlobs: names,
	})
}
