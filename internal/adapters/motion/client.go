// Package motion talks to the Motion task-management REST API.
package motion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"pihub/internal/application"
	"pihub/internal/domain"
	"pihub/internal/ports"
)

const defaultBaseURL = "https://api.usemotion.com/v1"

// Client implements ports.RemoteTasks against the Motion API. Every
// request carries the API key header and a hard timeout; expiry
// surfaces as a RemoteError, never as a hung reconciliation.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Ensure Client implements RemoteTasks
var _ ports.RemoteTasks = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (tests point this at a local
// server).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithTimeout overrides the default 15 second request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient creates a Motion client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type taskPayload struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	DueDate   string   `json:"dueDate,omitempty"`
	Labels    []string `json:"labels,omitempty"`
	Status    string   `json:"status,omitempty"`
	Completed bool     `json:"completed,omitempty"`
}

type taskList struct {
	Tasks []taskPayload `json:"tasks"`
}

// CreateTask creates a remote task and returns its ID.
func (c *Client) CreateTask(ctx context.Context, label, title string, due time.Time) (string, error) {
	body := map[string]any{"name": title}
	if label != "" {
		body["labels"] = []string{label}
	}
	if !due.IsZero() {
		body["dueDate"] = due.Format(time.DateOnly)
	}

	var created taskPayload
	if err := c.do(ctx, "create task", http.MethodPost, "/tasks", body, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", &application.RemoteError{
			Op:   "create task",
			Kind: application.RemoteKindServer,
			Err:  fmt.Errorf("response carried no task id"),
		}
	}
	return created.ID, nil
}

// CompleteTask marks a remote task completed.
func (c *Client) CompleteTask(ctx context.Context, taskID string) error {
	body := map[string]any{"completed": true}
	return c.do(ctx, "complete task", http.MethodPatch, "/tasks/"+taskID, body, nil)
}

// ListTasks returns the remote task set.
func (c *Client) ListTasks(ctx context.Context) ([]domain.TaskRecord, error) {
	var list taskList
	if err := c.do(ctx, "list tasks", http.MethodGet, "/tasks?limit=200", nil, &list); err != nil {
		return nil, err
	}
	out := make([]domain.TaskRecord, 0, len(list.Tasks))
	for _, t := range list.Tasks {
		rec := domain.TaskRecord{
			TaskID:    t.ID,
			Title:     t.Name,
			Completed: t.Completed || t.Status == "completed",
		}
		if len(t.Labels) > 0 {
			rec.Label = t.Labels[0]
		}
		if t.DueDate != "" {
			if d, err := time.Parse(time.DateOnly, t.DueDate[:min(10, len(t.DueDate))]); err == nil {
				rec.DueDate = d
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// do runs one request and decodes the response into out (when
// non-nil). Transport and status failures become RemoteErrors.
func (c *Client) do(ctx context.Context, op, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("motion: encode %s: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("motion: build %s request: %w", op, err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &application.RemoteError{Op: op, Kind: application.RemoteKindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &application.RemoteError{
			Op:     op,
			Kind:   kindForStatus(resp.StatusCode),
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &application.RemoteError{Op: op, Kind: application.RemoteKindServer, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func kindForStatus(status int) application.RemoteErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return application.RemoteKindUnauthorized
	case status >= 400 && status < 500:
		return application.RemoteKindBadRequest
	default:
		return application.RemoteKindServer
	}
}
