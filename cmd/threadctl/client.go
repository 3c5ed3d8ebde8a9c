package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/threadflow/internal/api"
	"github.com/phrazzld/threadflow/internal/api/shared"
)

const defaultClientTimeout = 10 * time.Second

// client talks to the threadflow HTTP API.
type client struct {
	baseURL    string
	httpClient *http.Client
}

func newClient(baseURL string) *client {
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultClientTimeout},
	}
}

// Submit posts a single task and returns the id assigned by the server.
func (c *client) Submit(ctx context.Context, data json.RawMessage, priority int) (string, error) {
	body, err := json.Marshal(api.SubmitTaskRequest{Data: data, Priority: &priority})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp api.SubmitTaskResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.TaskID, nil
}

// CompletedSince fetches completions strictly after since (unix seconds).
// A zero since returns the whole retained history.
func (c *client) CompletedSince(ctx context.Context, since int64) (*api.CompletedTasksResponse, error) {
	u := c.baseURL + "/completed-tasks"
	if since > 0 {
		u += "?" + url.Values{"since": {strconv.FormatInt(since, 10)}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	var resp api.CompletedTasksResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Pending returns the number of queued tasks.
func (c *client) Pending(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tasks", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	var resp api.PendingTasksResponse
	if err := c.do(req, &resp); err != nil {
		return 0, err
	}
	return resp.Tasks, nil
}

// do sends req and decodes a 200 response into out. Error bodies are
// surfaced using the server's error message.
func (c *client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var errResp shared.ErrorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, shared.MaxRequestBodyBytes))
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			return &statusError{Code: resp.StatusCode, Message: errResp.Error}
		}
		return &statusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}

// statusError is returned for any non-200 response.
type statusError struct {
	Code    int
	Message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}
