// Package apiclient is the JSON-over-HTTP client shared by the embedding
// and LLM adapters.
package apiclient

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

	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of an error reply is kept.
const maxErrorBody = 500

// StatusError is a reply outside 2xx.
type StatusError struct {
	Service string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.Code, e.Body)
}

// Client posts JSON to one API root.
type Client struct {
	service string
	baseURL string
	http    *http.Client
	header  http.Header
	limiter *rate.Limiter
}

type Option func(*Client)

// WithHTTPClient replaces the default client and its timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Set(key, value) }
}

func WithBearer(token string) Option {
	return WithHeader("Authorization", "Bearer "+token)
}

// WithRateLimit allows rps requests per second, bursting to one.
// Non-positive rates leave the client unthrottled.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// New returns a client for baseURL. service prefixes error messages.
func New(service, baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		header:  http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostJSON sends in as JSON to path and decodes the reply into out.
// A nil out discards the body.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", c.service, err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), out)
}

// Get fetches path and decodes the reply into out, which may be nil.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, http.NoBody, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.service, err)
	}
	req.Header = c.header.Clone()
	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", c.service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Service: c.service, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.service, err)
	}
	return nil
}

// Unavailable wraps err in sentinel unless the caller gave up.
func Unavailable(sentinel, err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
