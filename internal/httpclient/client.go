package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Common errors.
var (
	ErrNotFound     = errors.New("httpclient: resource not found")
	ErrForbidden    = errors.New("httpclient: access forbidden")
	ErrUnauthorized = errors.New("httpclient: unauthorized")
	ErrServerError  = errors.New("httpclient: server error")
)

// Options configures the HTTP client.
type Options struct {
	// Timeout bounds a whole API request, including reading the body.
	// Default: 30s
	Timeout time.Duration

	// DownloadTimeout bounds only the connection setup of a streamed
	// transfer; the body read is unbounded because archive transfers can
	// legitimately run for a long time.
	// Default: 30s
	DownloadTimeout time.Duration

	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	// Default: 100
	MaxIdleConnsPerHost int

	// UserAgent is sent with every request when non-empty.
	UserAgent string
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:             30 * time.Second,
		DownloadTimeout:     30 * time.Second,
		MaxIdleConnsPerHost: 100,
	}
}

// Client performs blocking requests against the upstream services. A single
// Client is safe for concurrent use by many workers.
type Client struct {
	api      *http.Client
	transfer *http.Client
	opts     Options
}

// NewClient creates a new HTTP client with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = 30 * time.Second
	}
	if opts.MaxIdleConnsPerHost <= 0 {
		opts.MaxIdleConnsPerHost = 100
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost:   opts.MaxIdleConnsPerHost,
		MaxIdleConns:          opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: opts.DownloadTimeout,
	}

	return &Client{
		api: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		// No overall timeout here: large transfers must not be killed
		// mid-stream. ResponseHeaderTimeout still bounds a server that
		// never answers.
		transfer: &http.Client{
			Transport: transport,
		},
		opts: opts,
	}
}

// Get performs a single GET request and returns the status code and body.
// A non-2xx status is not an error at this level; metadata lookups decide
// for themselves whether to fail soft.
func (c *Client) Get(ctx context.Context, url string, header http.Header) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	c.applyHeader(req, header)

	resp, err := c.api.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}

	return resp.StatusCode, body, nil
}

// Download performs a streamed GET and returns the body for the caller to
// copy. A non-2xx status is an error; the caller owns retrying.
func (c *Client) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.applyHeader(req, nil)

	resp, err := c.transfer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}

	if err := CheckStatusCode(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return resp.Body, nil
}

func (c *Client) applyHeader(req *http.Request, header http.Header) {
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
}

// CheckStatusCode returns an appropriate error for non-success status codes.
func CheckStatusCode(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code >= 500:
		return fmt.Errorf("%w: %d", ErrServerError, code)
	default:
		return fmt.Errorf("unexpected status code: %d", code)
	}
}

// EscapeSpaces rewrites literal spaces in a URL as %20 and nothing else.
// The upstream occasionally emits unescaped spaces inside otherwise valid
// signed URLs; anything more aggressive would double-escape them.
func EscapeSpaces(url string) string {
	return strings.ReplaceAll(url, " ", "%20")
}
