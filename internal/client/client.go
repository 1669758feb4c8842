// Package client provides an HTTP client for the Zizi chat backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/raphaelgruber/zizi-chat/internal/models"
)

// Endpoint paths relative to the base URL.
const (
	ChatPath     = "/chat"
	FeedbackPath = "/feedback"
)

// maxBodyLogLen is the maximum length for logged request bodies before truncation.
const maxBodyLogLen = 200

// Options configures a Client. The zero value is usable.
type Options struct {
	// Timeout bounds each request including reading the body. Default 60s.
	Timeout time.Duration

	// RateLimit is the sustained requests per second; <= 0 disables limiting.
	RateLimit float64
	RateBurst int

	Logger *slog.Logger

	// Transport is wrapped with request logging. Defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// Client talks to the /chat and /feedback endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: NewLoggingTransport(opts.Transport, logger),
		},
		limiter: limiter,
		logger:  logger,
	}
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ChatRequest is the payload for the chat endpoint.
type ChatRequest struct {
	Query string `json:"query"`
}

// Answer is the inner object of a chat response. Both fields may be absent.
type Answer struct {
	Answer string `json:"answer,omitempty"`
	Source string `json:"source,omitempty"`
}

// ChatResponse is the payload returned by the chat endpoint.
type ChatResponse struct {
	Response *Answer `json:"response"`
}

// FeedbackRequest is the payload for the feedback endpoint.
type FeedbackRequest struct {
	Query    string              `json:"query"`
	Answer   string              `json:"answer"`
	Source   string              `json:"source"`
	Feedback models.FeedbackKind `json:"feedback"`
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %s returned %d %s - %s",
		e.Path, e.Status, http.StatusText(e.Status), e.Body)
}

// ErrNoResponse is returned when a chat reply lacks the response object.
var ErrNoResponse = errors.New("chat reply has no response object")

// Chat sends a query and returns the backend's answer.
// A missing answer or source is not an error; callers apply fallbacks.
// A missing response object is.
func (c *Client) Chat(ctx context.Context, query string) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.post(ctx, ChatPath, ChatRequest{Query: query}, &resp); err != nil {
		return nil, err
	}
	if resp.Response == nil {
		return nil, ErrNoResponse
	}
	return &resp, nil
}

// SendFeedback records a rating for an answer. The response body is ignored.
func (c *Client) SendFeedback(ctx context.Context, fb FeedbackRequest) error {
	return c.post(ctx, FeedbackPath, fb, nil)
}

// post sends payload as JSON to path and decodes the response into result
// when result is non-nil.
func (c *Client) post(ctx context.Context, path string, payload, result any) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("sending request", "path", path, "body", truncate(string(reqBody), maxBodyLogLen))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Path:   path,
			Status: resp.StatusCode,
			Body:   truncate(string(body), maxBodyLogLen),
		}
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
