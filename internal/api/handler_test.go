package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dataepl/epl-ingestion/internal/event"
)

func newMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func TestHandleEvents_ProcessesBlobEvent(t *testing.T) {
	var processed []string
	h := NewHandler(func(ctx context.Context, n event.Notification) error {
		processed = append(processed, n.Subject)
		return nil
	})

	body := `[{"id": "1", "subject": "/blobServices/default/containers/ingestion/blobs/a.xlsx", "eventType": "Microsoft.Storage.BlobCreated"}]`
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newMux(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(processed) != 1 {
		t.Fatalf("expected 1 processed event, got %d", len(processed))
	}
}

func TestHandleEvents_ValidationHandshake(t *testing.T) {
	h := NewHandler(func(ctx context.Context, n event.Notification) error {
		t.Fatal("validation events must not reach the processor")
		return nil
	})

	body := `[{"id": "1", "eventType": "Microsoft.EventGrid.SubscriptionValidationEvent", "data": {"validationCode": "code-42"}}]`
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newMux(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp event.ValidationResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ValidationResponse != "code-42" {
		t.Fatalf("unexpected validation response %q", resp.ValidationResponse)
	}
}

func TestHandleEvents_ProcessorErrorIs500(t *testing.T) {
	h := NewHandler(func(ctx context.Context, n event.Notification) error {
		return errors.New("boom")
	})

	body := `{"id": "1", "subject": "/x", "eventType": "Microsoft.Storage.BlobCreated"}`
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newMux(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHandleEvents_BadBody(t *testing.T) {
	h := NewHandler(func(ctx context.Context, n event.Notification) error { return nil })

	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	newMux(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

type stubDiagStore struct {
	names []string
	err   error
}

func (s *stubDiagStore) Endpoint() string { return "https://epldatastore01:9000" }

func (s *stubDiagStore) List(ctx context.Context, limit int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.names) > limit {
		return s.names[:limit], nil
	}
	return s.names, nil
}

func TestHandleDiag(t *testing.T) {
	h := NewHandler(func(ctx context.Context, n event.Notification) error { return nil }).
		WithDiag(&stubDiagStore{names: []string{"a.xlsx", "b.csv"}}, "ingestion")

	req := httptest.NewRequest(http.MethodGet, "/api/diag", nil)
	rec := httptest.NewRecorder()
	newMux(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp diagResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Container != "ingestion" || len(resp.SampleBlobs) != 2 {
		t.Fatalf("unexpected diag response %+v", resp)
	}
}

func TestHandleDiag_Error(t *testing.T) {
	h := NewHandler(func(ctx context.Context, n event.Notification) error { return nil }).
		WithDiag(&stubDiagStore{err: errors.New("list failed")}, "ingestion")

	req := httptest.NewRequest(http.MethodGet, "/api/diag", nil)
	rec := httptest.NewRecorder()
	newMux(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHandleDiag_NotRegisteredWithoutStore(t *testing.T) {
	h := NewHandler(func(ctx context.Context, n event.Notification) error { return nil })

	req := httptest.NewRequest(http.MethodGet, "/api/diag", nil)
	rec := httptest.NewRecorder()
	newMux(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
