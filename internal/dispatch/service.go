package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dataepl/epl-ingestion/internal/event"
	"github.com/dataepl/epl-ingestion/internal/github"
)

// Dispatcher sends a workflow trigger carrying file identity.
type Dispatcher interface {
	Dispatch(ctx context.Context, payload github.ClientPayload) error
}

// Service filters storage notifications and forwards matching ones as
// workflow-dispatch calls.
type Service struct {
	dispatcher Dispatcher
	pathBegins string
	pathEnds   string
}

func NewService(dispatcher Dispatcher, pathBegins, pathEnds string) *Service {
	return &Service{dispatcher: dispatcher, pathBegins: pathBegins, pathEnds: pathEnds}
}

// Handle processes one notification. Subjects failing a configured filter
// are skipped silently; that is a normal no-op, not an error. A dispatch
// failure is returned so the host platform's retry policy takes over.
func (s *Service) Handle(ctx context.Context, n event.Notification) error {
	if s.pathBegins != "" && !strings.HasPrefix(n.Subject, s.pathBegins) {
		slog.InfoContext(ctx, "skipping, subject doesn't match PATH_BEGINS filter", "subject", n.Subject)
		return nil
	}
	if s.pathEnds != "" && !strings.HasSuffix(n.Subject, s.pathEnds) {
		slog.InfoContext(ctx, "skipping, subject doesn't match PATH_ENDS filter", "subject", n.Subject)
		return nil
	}

	payload := github.ClientPayload{
		BlobURL:   n.Data.URL,
		FileName:  n.FileName(),
		EventTime: n.Timestamp().UTC().Format(time.RFC3339),
	}

	slog.InfoContext(ctx, "forwarding blob event", "subject", n.Subject, "file", payload.FileName)

	if err := s.dispatcher.Dispatch(ctx, payload); err != nil {
		return fmt.Errorf("dispatch %s: %w", payload.FileName, err)
	}
	return nil
}
