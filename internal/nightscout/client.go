package nightscout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// LatestFetcher is implemented by *Client and faked in tests.
type LatestFetcher interface {
	FetchLatest(ctx context.Context) (Entry, error)
}

var _ LatestFetcher = (*Client)(nil)

// Client talks to a Nightscout site.
type Client struct {
	baseURL    *url.URL
	entriesURL *url.URL
	http       *http.Client
	userAgent  string
}

const (
	entriesPath      = "api/v1/entries.json"
	defaultUserAgent = "glucobar/0.1"
	requestTimeout   = 10 * time.Second
)

// NewClient builds a Client for the site at baseURL.
func NewClient(baseURL string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	entries := base.JoinPath(entriesPath)
	entries.RawQuery = url.Values{"count": {"1"}}.Encode()
	return &Client{
		baseURL:    base,
		entriesURL: entries,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized site URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// EntriesURL returns the URL polled for the latest entry.
func (c *Client) EntriesURL() string {
	return c.entriesURL.String()
}

// FetchLatest retrieves the single most recent entry.
func (c *Client) FetchLatest(ctx context.Context) (Entry, error) {
	if c == nil {
		return Entry{}, fmt.Errorf("client is nil")
	}
	target := c.entriesURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Entry{}, &TransportError{URL: target, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return Entry{}, &TransportError{URL: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Entry{}, &TransportError{URL: target, StatusCode: resp.StatusCode}
	}

	var entries []rawEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return Entry{}, &ParseError{Reason: "decode response", Err: err}
	}
	if len(entries) == 0 {
		return Entry{}, &ParseError{Reason: "empty entry list"}
	}
	return entries[0].validate()
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("nightscout url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse nightscout url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("nightscout url %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("nightscout url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
