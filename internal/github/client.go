package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DispatchEventType must match the repository_dispatch trigger in the
// target workflow file.
const DispatchEventType = "blob-created"

// ClientPayload carries file identity to the triggered workflow.
type ClientPayload struct {
	BlobURL   string `json:"blob_url"`
	FileName  string `json:"file_name"`
	EventTime string `json:"event_time"`
}

type dispatchRequest struct {
	EventType     string        `json:"event_type"`
	ClientPayload ClientPayload `json:"client_payload"`
}

// apiError represents a non-204 response from the dispatch endpoint.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("github: %s (status %d)", e.Message, e.StatusCode)
}

// Client issues workflow-dispatch requests against one repository.
type Client struct {
	baseURL    string
	owner      string
	repo       string
	token      string
	httpClient *http.Client
}

// NewClient creates a dispatch client. baseURL is normally
// "https://api.github.com"; tests point it at a local server.
func NewClient(baseURL, owner, repo, token string) *Client {
	return &Client{
		baseURL: baseURL,
		owner:   owner,
		repo:    repo,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Dispatch posts a repository_dispatch event. The API answers 204 No
// Content on success; any other status is returned as an error so the
// caller can surface it for platform-level retry.
func (c *Client) Dispatch(ctx context.Context, payload ClientPayload) error {
	body, err := json.Marshal(dispatchRequest{
		EventType:     DispatchEventType,
		ClientPayload: payload,
	})
	if err != nil {
		return fmt.Errorf("marshal dispatch payload: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/dispatches", c.baseURL, c.owner, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	slog.InfoContext(ctx, "dispatching workflow trigger", "owner", c.owner, "repo", c.repo, "file", payload.FileName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		slog.InfoContext(ctx, "workflow dispatch accepted", "owner", c.owner, "repo", c.repo)
		return nil
	}

	slog.ErrorContext(ctx, "workflow dispatch rejected",
		"status", resp.StatusCode, "hint", statusHint(resp.StatusCode))
	return &apiError{StatusCode: resp.StatusCode, Message: "workflow dispatch failed"}
}

// statusHint maps the common dispatch failures to an actionable explanation.
func statusHint(status int) string {
	switch status {
	case http.StatusNotFound:
		return "repo doesn't exist or the token doesn't have access"
	case http.StatusUnauthorized:
		return "token is invalid or expired"
	case http.StatusUnprocessableEntity:
		return "workflow file missing or event_type doesn't match the trigger"
	default:
		return "unexpected response"
	}
}
