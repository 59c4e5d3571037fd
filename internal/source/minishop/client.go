package minishop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nhle/notification-center/internal/source"
)

// maxErrorBody caps how much of an error response is kept for messages.
const maxErrorBody = 512

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
	Err    error
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %d on %s %s: %s", e.Status, e.Method, e.Path, e.Body)
	}
	return fmt.Sprintf("unexpected status %d on %s %s", e.Status, e.Method, e.Path)
}

func (e *StatusError) Unwrap() error { return e.Err }

// statusOf extracts the HTTP status from err, or 0 if none was received.
func statusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// Client is a thin HTTP client for the notifications REST resource.
// It handles optional Bearer authentication, JSON decoding, form posts
// and client-side rate limiting. It never retries: the poller's next
// tick is the retry.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout of the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests at perSec with a burst of twice
// that. A non-positive value disables limiting.
func WithRateLimit(perSec float64) Option {
	return func(c *Client) {
		if perSec <= 0 {
			c.limiter = nil
			return
		}
		burst := int(perSec * 2)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

// WithHTTPClient replaces the underlying http.Client (used by tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a client rooted at baseURL, e.g.
// http://localhost:8083/api/notifications. token may be empty.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the resource root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(
	ctx context.Context,
	path string,
	query url.Values,
	result interface{},
) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, "", result)
}

// Put performs a body-less HTTP PUT request. The response body is decoded
// into result when result is non-nil.
func (c *Client) Put(
	ctx context.Context,
	path string,
	result interface{},
) error {
	return c.do(ctx, http.MethodPut, path, nil, "", result)
}

// PostForm performs an HTTP POST with a form-encoded body.
func (c *Client) PostForm(
	ctx context.Context,
	path string,
	form url.Values,
	result interface{},
) error {
	return c.do(
		ctx, http.MethodPost, path,
		strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded",
		result,
	)
}

// do builds the request, applies auth and rate limiting, and decodes the
// JSON response.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body io.Reader,
	contentType string,
	result interface{},
) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("reading response body: %w", readErr)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &StatusError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Err: &source.AuthError{
				BaseURL: c.baseURL,
				Message: "credentials rejected; check the API token",
			},
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text := strings.TrimSpace(string(respBody))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody] + "..."
		}
		return &StatusError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   text,
		}
	}

	// No content to parse (e.g. 204 or an empty 200).
	if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf(
			"unmarshaling response from %s %s: %w",
			method, path, err,
		)
	}

	return nil
}
