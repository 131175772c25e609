package openagenda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// maxThrottleRetries bounds consecutive 429 retries for one page.
const maxThrottleRetries = 3

// page is one API response.
type page struct {
	Events []json.RawMessage `json:"events"`
	Data   []json.RawMessage `json:"data"`
	After  json.RawMessage   `json:"after"`
}

func (p page) items() []json.RawMessage {
	if len(p.Events) > 0 {
		return p.Events
	}
	return p.Data
}

// Client calls the events endpoint of one agenda.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *RateLimiter
}

// NewClient creates a client. A nil httpClient uses a client with the
// configured timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	cfg = cfg.withDefaults()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: NewRateLimiter(cfg.RequestsPerSecond),
	}
}

// fetchPage requests one page, retrying while throttled.
func (c *Client) fetchPage(ctx context.Context, after cursor) (*page, error) {
	for attempt := 0; ; attempt++ {
		p, err := c.doFetch(ctx, after)
		var rl *RateLimitError
		if errors.As(err, &rl) && attempt < maxThrottleRetries {
			if err := sleep(ctx, rl.RetryAfter); err != nil {
				return nil, err
			}
			continue
		}
		return p, err
	}
}

func (c *Client) doFetch(ctx context.Context, after cursor) (*page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("size", strconv.Itoa(c.cfg.PageSize))
	after.apply(q)
	endpoint := fmt.Sprintf("%s/agendas/%s/events?%s", c.cfg.BaseURL, url.PathEscape(c.cfg.AgendaUID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("openagenda: build request: %w", err)
	}
	req.Header.Set("key", c.cfg.APIKey)
	req.Header.Set("lang", "fr")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if err := c.limiter.CheckRateLimit(resp); err != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: domain.Head(string(body), 500)}
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decode page: %w", domain.ErrSourceUnavailable, err)
	}
	return &p, nil
}
