// Package backend implements the client for the upstream procurement API.
// The upstream service owns all authoritative state and authorization;
// every call here is a thin, retry-free JSON round trip authenticated with
// the session's bearer token.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client wraps interactions with the procurement backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Error is a non-success response from the backend. Message carries the
// backend's own message verbatim when one was present.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return e.Message
}

// HTTPStatus returns the backend's HTTP status code.
func (e *Error) HTTPStatus() int { return e.Status }

// UpstreamMessage returns the backend's own message, empty when it sent none.
func (e *Error) UpstreamMessage() string { return e.Message }

// envelope is the wire format of every backend response.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Ping checks if the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return &Error{Status: resp.StatusCode}
	}
	return nil
}

// do performs one authenticated round trip. A nil body sends no payload and
// a nil out discards the data field. Non-2xx statuses and success=false both
// surface as *Error.
func (c *Client) do(ctx context.Context, token, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backend: read response: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= 400 {
				return &Error{Status: resp.StatusCode}
			}
			return fmt.Errorf("backend: decode response: %w", err)
		}
	}

	if resp.StatusCode >= 400 || (len(raw) > 0 && !env.Success) {
		return &Error{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("backend: decode data: %w", err)
		}
	}
	return nil
}
