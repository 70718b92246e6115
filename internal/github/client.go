package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gitfolio/gitfolio/internal/metrics"
)

const (
	// DefaultBaseURL is the GitHub REST API base.
	DefaultBaseURL = "https://api.github.com"
	// DefaultMaxPages bounds how many event pages one scan requests.
	DefaultMaxPages = 10
	// DefaultPerPage is the page size for event requests.
	DefaultPerPage = 100
	// MaxPerPage is the largest page size the API accepts.
	MaxPerPage = 100

	// ClientTimeout is the total request timeout.
	ClientTimeout = 30 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 15 * time.Second

	userAgent = "gitfolio/1.0"
	acceptHdr = "application/vnd.github+json"
)

// Client fetches public events for a user from the GitHub REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// New creates an events API client. token may be empty; requests are
// then unauthenticated and subject to much lower rate limits.
func New(baseURL, token string, logger *slog.Logger, recorder metrics.Recorder) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout: ClientTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   DialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   TLSHandshakeTimeout,
				ResponseHeaderTimeout: ResponseHeaderTimeout,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
			},
			// API responses are never redirects; treat one as an error
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger:  logger.With("component", "github.client"),
		metrics: recorder,
	}
}

// Authenticated reports whether requests carry a bearer token.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// EventsPage fetches one page of a user's public events, newest first.
func (c *Client) EventsPage(ctx context.Context, username string, page, perPage int) ([]Event, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}

	u := fmt.Sprintf("%s/users/%s/events/public?page=%d&per_page=%d",
		c.baseURL, url.PathEscape(username), page, perPage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", acceptHdr)
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveGitHubRequestDuration(time.Since(start))
	if err != nil {
		c.metrics.IncGitHubRequest("error")
		return nil, fmt.Errorf("fetch events page %d: %w", page, err)
	}
	defer resp.Body.Close()

	c.metrics.IncGitHubRequest(strconv.Itoa(resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, ErrUserNotFound
	case isRateLimitResponse(resp):
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, rateLimitError(resp)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode events page %d: %w", page, err)
	}
	return events, nil
}

// EventsForYear scans the public events feed and returns the events
// created in the target UTC year, newest first. The feed is ordered
// newest to oldest, so the scan stops at the first event from an
// older year, on an empty page, or after maxPages pages.
func (c *Client) EventsForYear(ctx context.Context, username string, year, maxPages, perPage int) ([]Event, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if perPage <= 0 || perPage > MaxPerPage {
		perPage = DefaultPerPage
	}

	var collected []Event
	for page := 1; page <= maxPages; page++ {
		events, err := c.fetchPageWithRetry(ctx, username, page, perPage)
		if err != nil {
			return nil, err
		}
		if len(events) == 0 {
			break
		}

		sawOlder := false
		for _, ev := range events {
			created, ok := ev.CreatedAtTime()
			if !ok {
				continue
			}
			switch y := created.UTC().Year(); {
			case y == year:
				collected = append(collected, ev)
			case y < year:
				sawOlder = true
			}
			if sawOlder {
				break
			}
		}
		if sawOlder {
			break
		}
	}
	return collected, nil
}

// fetchPageWithRetry retries transient page failures per the fetch
// retry ladder. Not-found, rate-limit and context errors fail fast.
func (c *Client) fetchPageWithRetry(ctx context.Context, username string, page, perPage int) ([]Event, error) {
	var lastErr error
	for attempt := 0; attempt < MaxFetchAttempts; attempt++ {
		if attempt > 0 {
			delay := FetchRetryDelay(attempt - 1)
			c.logger.Warn("retrying events page",
				"page", page,
				"attempt", attempt+1,
				"delay", delay.String(),
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		events, err := c.EventsPage(ctx, username, page, perPage)
		if err == nil {
			return events, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("events page %d after %d attempts: %w", page, MaxFetchAttempts, lastErr)
}

// isRetryable classifies fetch errors. Network failures and 5xx
// responses are transient; everything else fails fast.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrEmptyUsername) || errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrRateLimited) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return true
}

func isRateLimitResponse(resp *http.Response) bool {
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests {
		return false
	}
	return resp.Header.Get("X-RateLimit-Remaining") == "0"
}

func rateLimitError(resp *http.Response) error {
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			return fmt.Errorf("%w: resets at %s", ErrRateLimited,
				time.Unix(ts, 0).UTC().Format(time.RFC3339))
		}
	}
	return ErrRateLimited
}
