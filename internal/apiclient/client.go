// Package apiclient is the single HTTP entry point to the forum backend.
//
// Every call goes through a RoundTripper chain: the auth stage attaches the
// calling scope's token and handles 401 cleanup, and the observe stage records
// timing. Non-2xx answers come back as *APIError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mhsn/forumweb/internal/observability/statsd"
	"github.com/mhsn/forumweb/internal/ports"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:8000/api/v1"

	defaultTimeout = 15 * time.Second
	maxErrorBody   = 1 << 20
)

// Options configures a Client.
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	Storage        ports.TokenStorage
	OnUnauthorized UnauthorizedFunc
	Metrics        statsd.Sink
	Logger         *slog.Logger
	// Transport is the innermost RoundTripper; nil means http.DefaultTransport.
	Transport http.RoundTripper
	UserAgent string
}

// Client talks JSON to the backend REST API.
type Client struct {
	base      string
	http      *http.Client
	userAgent string
}

var _ ports.AuthAPI = (*Client)(nil)

// New builds a client. It fails only on an unusable base URL.
func New(opts Options) (*Client, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q must be http or https", base)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "apiclient")

	sink := opts.Metrics
	if sink == nil {
		sink = statsd.Nop{}
	}

	inner := opts.Transport
	if inner == nil {
		inner = http.DefaultTransport
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rt := &authTransport{
		next:           &observeTransport{next: inner, sink: sink, logger: logger},
		storage:        opts.Storage,
		onUnauthorized: opts.OnUnauthorized,
		logger:         logger,
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "forumweb"
	}

	return &Client{
		base:      strings.TrimRight(u.String(), "/"),
		http:      &http.Client{Transport: rt, Timeout: timeout},
		userAgent: ua,
	}, nil
}

// BaseURL returns the normalised API root.
func (c *Client) BaseURL() string { return c.base }

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := c.base + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Payload: payload}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
