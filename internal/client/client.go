// Package client is the HTTP client for the triage board API, used by the
// terminal dashboard and the triagectl commands.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linnemanlabs/triageboard/internal/patient"
)

const (
	pathIngest  = "/ingest"
	pathQuery   = "/query"
	pathConfirm = "/confirm"
	pathReset   = "/reset"

	maxResponseBytes = 16 * 1024 * 1024
)

// Config holds configuration for Client.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// Client talks to a triage board server.
type Client struct {
	http   *http.Client
	config Config
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// New constructs a Client. Returns an error if BaseURL is empty.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	return &Client{
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		config: cfg,
	}, nil
}

// BaseURL returns the configured server URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Query returns the full record snapshot in insertion order.
func (c *Client) Query(ctx context.Context) ([]*patient.Record, error) {
	body, err := c.do(ctx, http.MethodGet, pathQuery, nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Data []*patient.Record `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	if resp.Data == nil {
		resp.Data = []*patient.Record{}
	}
	return resp.Data, nil
}

// Ingest posts one JSON object body.
func (c *Client) Ingest(ctx context.Context, record []byte) error {
	_, err := c.do(ctx, http.MethodPost, pathIngest, record)
	return err
}

// Confirm posts a confirmation payload. It satisfies dashboard.Sender.
func (c *Client) Confirm(ctx context.Context, rec *patient.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, pathConfirm, body)
	return err
}

// Reset clears the server store.
func (c *Client) Reset(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, pathReset, nil)
	return err
}

// do performs a request to path (relative to BaseURL) and returns the body,
// or an error on transport failure or non-2xx status.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	url := strings.TrimRight(c.config.BaseURL, "/") + path

	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(body, 200)}
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
