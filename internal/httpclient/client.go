// Package httpclient provides the shared HTTP client used by parsers and
// the downloader: a cookie jar, a default browser-like header set, and a
// counting-semaphore limiter that callers can clone at a different width.
package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/net/publicsuffix"
)

// DefaultConcurrency is the permit width a freshly constructed Client uses
// for its rate-limited calls.
const DefaultConcurrency = 10

// Client wraps an *http.Client with a shared default header set and a
// counting semaphore that bounds how many rate-limited calls can be in
// flight at once.
type Client struct {
	HTTP           *http.Client
	DefaultHeaders http.Header
	limiter        chan struct{}
}

// New builds a Client with a cookie jar and, if proxyURL is non-empty, a
// transport routed through that proxy.
func New(proxyURL string) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{}
	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(parsed)
	}

	headers := http.Header{}
	headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	headers.Set("Accept-Language", "en-US,en;q=0.9")
	headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36")

	return &Client{
		HTTP: &http.Client{
			Jar:       jar,
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		DefaultHeaders: headers,
		limiter:        make(chan struct{}, DefaultConcurrency),
	}, nil
}

// WithLimit returns a clone of the client sharing the same underlying
// transport and cookie jar, but with its own limiter sized to permits.
func (c *Client) WithLimit(permits int) *Client {
	if permits <= 0 {
		permits = 1
	}
	return &Client{
		HTTP:           c.HTTP,
		DefaultHeaders: c.DefaultHeaders.Clone(),
		limiter:        make(chan struct{}, permits),
	}
}

func (c *Client) mergeHeaders(req *http.Request, extra http.Header) {
	for k, vs := range c.DefaultHeaders {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, vs := range extra {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
}

func (c *Client) acquire(ctx context.Context) error {
	select {
	case c.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() { <-c.limiter }

// Get issues a plain, unthrottled GET.
func (c *Client) Get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	c.mergeHeaders(req, nil)
	return c.HTTP.Do(req)
}

// Head issues a plain, unthrottled HEAD.
func (c *Client) Head(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return nil, err
	}
	c.mergeHeaders(req, nil)
	return c.HTTP.Do(req)
}

// GetRateLimited acquires a permit before issuing the GET.
func (c *Client) GetRateLimited(ctx context.Context, target string) (*http.Response, error) {
	return c.GetWithHeadersRateLimited(ctx, target, nil)
}

// GetWithHeadersRateLimited acquires a permit, merges extra on top of the
// default headers, and issues the GET.
func (c *Client) GetWithHeadersRateLimited(ctx context.Context, target string, extra http.Header) (*http.Response, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	c.mergeHeaders(req, extra)
	return c.HTTP.Do(req)
}

// PostWithHeadersRateLimited acquires a permit, merges extra headers, and
// issues the POST with the given body.
func (c *Client) PostWithHeadersRateLimited(ctx context.Context, target string, body io.Reader, extra http.Header) (*http.Response, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return nil, err
	}
	c.mergeHeaders(req, extra)
	return c.HTTP.Do(req)
}
