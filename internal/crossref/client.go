// Package crossref fetches papers from the CrossRef works API for journals
// without a usable feed.
package crossref

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/tanakalab/jtrack/internal/netclass"
)

const (
	// BaseURL is the CrossRef REST API base URL.
	BaseURL = "https://api.crossref.org"

	// DefaultTimeout bounds a single works request.
	DefaultTimeout = 30 * time.Second

	// RateLimit keeps the client inside CrossRef's polite-pool budget.
	RateLimit = 2.0

	// PageSize is the number of works requested per call.
	PageSize = 100

	// MaxTries bounds retry attempts for transient failures.
	MaxTries = 3
)

// APIError is an HTTP-level failure from the works endpoint. A zero
// StatusCode means the request failed before a status line was read.
type APIError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration // Server-supplied delay on rate-limit responses
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("CrossRef API error: %s", e.Message)
	}
	return fmt.Sprintf("CrossRef API error (status %d): %s", e.StatusCode, e.Message)
}

// HTTPStatus implements netclass.HTTPStatusError.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// Client is a rate-limited HTTP client for the CrossRef works endpoint.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
	maxTries   int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithContact attaches a mailto contact to the User-Agent as a politeness
// signal per CrossRef etiquette.
func WithContact(email string) ClientOption {
	return func(c *Client) {
		if email != "" {
			c.userAgent = fmt.Sprintf("jtrack/1.0 (mailto:%s)", email)
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a CrossRef works client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		userAgent:  "jtrack/1.0",
		maxTries:   MaxTries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Works queries the journal's works endpoint for items published on or
// after from, newest first. Transient failures are retried with
// exponential backoff; a rate-limit response's Retry-After delay takes
// precedence over the computed backoff.
func (c *Client) Works(ctx context.Context, issn string, from time.Time) ([]WorkItem, error) {
	endpoint := fmt.Sprintf("%s/journals/%s/works", c.baseURL, url.PathEscape(issn))

	params := url.Values{}
	params.Set("filter", "from-pub-date:"+from.Format("2006-01-02"))
	params.Set("rows", strconv.Itoa(PageSize))
	params.Set("sort", "published")
	params.Set("order", "desc")

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second

	var lastErr error
	for attempt := 0; attempt < c.maxTries; attempt++ {
		if attempt > 0 {
			delay := bo.NextBackOff()
			if ra := retryAfterDelay(lastErr); ra > 0 {
				delay = ra
			}
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		items, err := c.getWorks(ctx, endpoint+"?"+params.Encode())
		if err == nil {
			return items, nil
		}
		lastErr = err
		if !netclass.Retryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// getWorks performs one request against the works endpoint.
func (c *Client) getWorks(ctx context.Context, fullURL string) ([]WorkItem, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting works: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
				apiErr.RetryAfter = time.Duration(secs) * time.Second
			}
		}
		io.Copy(io.Discard, resp.Body)
		return nil, apiErr
	}

	var wrapper worksResponse
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return nil, fmt.Errorf("decoding works response: %w", err)
	}

	return wrapper.Message.Items, nil
}

// retryAfterDelay extracts a server-supplied retry delay from an error.
func retryAfterDelay(err error) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.RetryAfter
	}
	return 0
}
