// Package aiclient calls the external InvestMate AI service and normalises
// the handful of response shapes it is known to produce.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Operation string

const (
	OpInvestorCoach       Operation = "investor-coach"
	OpStartupCoach        Operation = "startup-coach"
	OpMatchmakingInvestor Operation = "matchmaking-investor"
	OpMatchmakingStartup  Operation = "matchmaking-startup"
)

// payloadKey is the request body key the service expects for op.
func (op Operation) payloadKey() string {
	switch op {
	case OpInvestorCoach, OpMatchmakingInvestor:
		return "investorData"
	default:
		return "startupData"
	}
}

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

var ErrNotConfigured = errors.New("ai service not configured")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ai service returned %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for baseURL. An empty baseURL yields a client whose
// calls all fail with ErrNotConfigured.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Call posts profile to the operation's endpoint and returns the normalised
// response.
func (c *Client) Call(ctx context.Context, op Operation, profile any) (*Result, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(map[string]any{op.payloadKey(): profile})
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+string(op), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 256)}
	}

	return ParseResponse(data)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
