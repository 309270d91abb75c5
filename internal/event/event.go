package event

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SubscriptionValidationType marks the handshake event the notification
// service sends when an endpoint subscription is created. The handler must
// echo the validation code back instead of processing it.
const SubscriptionValidationType = "Microsoft.EventGrid.SubscriptionValidationEvent"

// BlobCreatedType is the event type emitted for new storage objects.
const BlobCreatedType = "Microsoft.Storage.BlobCreated"

// Notification is a single storage event-notification envelope.
type Notification struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Subject   string    `json:"subject"`
	EventType string    `json:"eventType"`
	EventTime time.Time `json:"eventTime"`
	Data      Data      `json:"data"`
}

// Data is the payload section of a notification. Only the fields the
// pipeline consumes are modelled.
type Data struct {
	URL            string `json:"url"`
	ValidationCode string `json:"validationCode"`
}

// ValidationResponse is the body echoed back for a subscription handshake.
type ValidationResponse struct {
	ValidationResponse string `json:"validationResponse"`
}

// Parse decodes a webhook request body into notifications. The service
// delivers events as a JSON array; a bare object is accepted too.
func Parse(body []byte) ([]Notification, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var events []Notification
		if err := json.Unmarshal(body, &events); err != nil {
			return nil, fmt.Errorf("decode event array: %w", err)
		}
		return events, nil
	}
	var single Notification
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return []Notification{single}, nil
}

// IsValidation reports whether this is a subscription handshake event.
func (n Notification) IsValidation() bool {
	return n.EventType == SubscriptionValidationType
}

// BlobPath returns the object path within the container, derived from the
// subject, e.g. "/blobServices/default/containers/ingestion/blobs/a/b.xlsx"
// yields "a/b.xlsx". Falls back to the full subject when the marker is absent.
func (n Notification) BlobPath() string {
	if _, after, ok := strings.Cut(n.Subject, "/blobs/"); ok {
		return after
	}
	return strings.TrimPrefix(n.Subject, "/")
}

// FileName returns the final path segment of the blob URL, or of the
// subject when the URL is empty.
func (n Notification) FileName() string {
	source := n.Data.URL
	if source == "" {
		source = n.Subject
	}
	if idx := strings.LastIndex(source, "/"); idx >= 0 {
		return source[idx+1:]
	}
	return source
}

// Timestamp returns the event time, substituting the current UTC time when
// the platform did not supply one.
func (n Notification) Timestamp() time.Time {
	if n.EventTime.IsZero() {
		return time.Now().UTC()
	}
	return n.EventTime
}
