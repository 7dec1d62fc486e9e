// Package runclient drives the auto-apply API from the command line: it
// starts a run, polls its status and renders every new snapshot.
package runclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/autoapply/internal/domain/model"
)

const (
	requestTimeout  = 10 * time.Second
	maxResponseBody = 1 << 20
)

// Client talks to one auto-apply server.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
	}
}

type startRequest struct {
	Threshold *float64 `json:"threshold,omitempty"`
}

type startResponse struct {
	RunID string `json:"runId"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// StartRun posts a start request and returns the new run id.
func (c *Client) StartRun(ctx context.Context, threshold *float64) (string, error) {
	payload, err := json.Marshal(startRequest{Threshold: threshold})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auto-apply", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: start returned %d: %s", ErrBadResponse, status, describe(body))
	}

	var resp startResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.RunID == "" {
		return "", fmt.Errorf("%w: start body %q", ErrBadResponse, string(body))
	}
	return resp.RunID, nil
}

// Status fetches the latest snapshot of runID.
func (c *Client) Status(ctx context.Context, runID string) (model.RunSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status/"+url.PathEscape(runID), http.NoBody)
	if err != nil {
		return model.RunSnapshot{}, fmt.Errorf("failed to create request: %w", err)
	}

	body, status, err := c.do(req)
	if err != nil {
		return model.RunSnapshot{}, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return model.RunSnapshot{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	default:
		return model.RunSnapshot{}, fmt.Errorf("%w: status returned %d: %s", ErrBadResponse, status, describe(body))
	}

	var snap model.RunSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return model.RunSnapshot{}, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return snap, nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// describe extracts the most useful message from an error body.
func describe(body []byte) string {
	var e errorBody
	if err := json.Unmarshal(body, &e); err == nil {
		switch {
		case e.Message != "":
			return e.Message
		case e.Error != "":
			return e.Error
		}
	}
	return strings.TrimSpace(string(body))
}
