// Package client talks to the medical chatbot backend over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/medchat/pkg/api"
)

// DefaultBaseURL is where the backend listens when run locally with uvicorn.
const DefaultBaseURL = "http://127.0.0.1:8000"

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Body)
}

// Client is a backend client. It issues exactly one HTTP request per call and
// never retries.
type Client struct {
	baseURL    atomic.Value // string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the http.Client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a new Client for the backend at baseURL.
func New(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		// Answer generation with a vision model can be slow; the caller's
		// context bounds the request otherwise.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     logger,
	}
	c.SetBaseURL(baseURL)

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetBaseURL swaps the backend location for subsequent requests.
func (c *Client) SetBaseURL(baseURL string) {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c.baseURL.Store(baseURL)
}

// BaseURL returns the current backend location.
func (c *Client) BaseURL() string {
	return c.baseURL.Load().(string)
}

// Endpoint returns the /ask URL.
func (c *Client) Endpoint() string {
	return c.BaseURL() + "/ask"
}

// Ask sends a question, and optionally an image data URL, to POST /ask.
func (c *Client) Ask(ctx context.Context, req api.AskRequest) (*api.AskResponse, error) {
	var resp api.AskResponse
	if err := c.do(ctx, http.MethodPost, "/ask", req, &resp); err != nil {
		return nil, err
	}

	if resp.Sources == nil {
		resp.Sources = []string{}
	}

	return &resp, nil
}

// Transcribe sends raw audio to POST /transcribe and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	req := api.TranscribeRequest{
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
	}

	var resp api.TranscribeResponse
	if err := c.do(ctx, http.MethodPost, "/transcribe", req, &resp); err != nil {
		return "", err
	}

	return resp.Text, nil
}

// Status fetches GET / from the backend.
func (c *Client) Status(ctx context.Context) (*api.StatusResponse, error) {
	var resp api.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/", nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		reqBody, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(reqBody)
	}

	url := c.BaseURL() + path
	c.logger.Debug("sending request to backend",
		zap.String("method", method),
		zap.String("url", url),
	)

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	startTime := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("received response from backend",
		zap.String("url", url),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("duration", time.Since(startTime)),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return &StatusError{Code: httpResp.StatusCode, Body: errorDetail(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// errorDetail extracts the backend's "detail" field, falling back to the raw body.
func errorDetail(body []byte) string {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Detail != "" {
		return errResp.Detail
	}

	return truncate(string(body), 200)
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
