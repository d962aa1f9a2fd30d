package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	defaultUserAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultMaxAttempts  = 2
	defaultBackoff      = 500 * time.Millisecond
	defaultTimeout      = 20 * time.Second
	defaultMaxBodyBytes = 8 << 20
	defaultCacheTTL     = 15 * time.Minute
	snippetBytes        = 256
)

// Client issues rate limited requests with bounded retry on transient failures
type Client struct {
	httpClient   *http.Client
	userAgent    string
	limiter      Waiter
	override     RequestFunc
	cache        Cache
	cacheTTL     time.Duration
	maxAttempts  int
	backoff      time.Duration
	timeout      time.Duration
	maxBodyBytes int64
}

// New instantiates a Client, filling defaults for unset fields
func New(cfg Config) *Client {
	c := &Client{
		httpClient:   cfg.HTTPClient,
		userAgent:    cfg.UserAgent,
		limiter:      cfg.Limiter,
		override:     cfg.Override,
		cache:        cfg.Cache,
		cacheTTL:     cfg.CacheTTL,
		maxAttempts:  cfg.MaxAttempts,
		backoff:      cfg.Backoff,
		timeout:      cfg.Timeout,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = defaultMaxAttempts
	}
	if c.backoff <= 0 {
		c.backoff = defaultBackoff
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.maxBodyBytes <= 0 {
		c.maxBodyBytes = defaultMaxBodyBytes
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = defaultCacheTTL
	}
	return c
}

// WithLimiter returns a copy of the client paced by l. Adapters hitting
// different endpoints get their own copy sharing transport and cache.
func (c *Client) WithLimiter(l Waiter) *Client {
	cp := *c
	cp.limiter = l
	return &cp
}

// WithOverride returns a copy of the client that routes requests through fn
func (c *Client) WithOverride(fn RequestFunc) *Client {
	cp := *c
	cp.override = fn
	return &cp
}

// UserAgent returns the header value sent with every request
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Get is Do for a GET request
func (c *Client) Get(ctx context.Context, url string, header http.Header) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, URL: url, Header: header})
}

// GetJSON fetches url and decodes the JSON body into v
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header, v any) error {
	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}
	if h.Get("Accept") == "" {
		h.Set("Accept", "application/json")
	}

	resp, err := c.Do(ctx, Request{Method: http.MethodGet, URL: url, Header: h, Accept: acceptJSON})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("fetch: decode %s: %w", RedactSecrets(url), err)
	}
	return nil
}

// Do performs req. Every network attempt waits on the limiter first. A
// non-2xx response is returned together with a *StatusError so callers can
// inspect the body, e.g. for challenge pages.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c == nil {
		return nil, errors.New("fetch: client is nil")
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	key := cacheKey(req)
	if resp, ok := c.loadCached(ctx, req, key); ok {
		return resp, nil
	}

	var (
		resp *Response
		err  error
	)
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if c.limiter != nil {
			if werr := c.limiter.Wait(ctx); werr != nil {
				return nil, werr
			}
		}

		resp, err = c.attempt(ctx, req)
		if err == nil && req.Accept != nil {
			if aerr := req.Accept(resp); aerr != nil {
				return resp, aerr
			}
		}
		if err == nil {
			c.storeCached(ctx, req, key, resp)
			return resp, nil
		}
		if attempt == c.maxAttempts || !isTransient(ctx, err) {
			break
		}

		select {
		case <-time.After(time.Duration(attempt) * c.backoff):
		case <-ctx.Done():
			return resp, ctx.Err()
		}
	}

	return resp, err
}

func (c *Client) attempt(ctx context.Context, req Request) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		resp *Response
		err  error
	)
	if c.override != nil {
		resp, err = c.override(attemptCtx, req)
	} else {
		resp, err = c.roundTrip(attemptCtx, req)
	}
	if err != nil {
		return nil, err
	}
	if resp.URL == "" {
		resp.URL = req.URL
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, &StatusError{
			URL:        RedactSecrets(req.URL),
			StatusCode: resp.StatusCode,
			Snippet:    snippet(resp.Body),
		}
	}
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	for k, vals := range req.Header {
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch: %s %s: %w", req.Method, RedactSecrets(req.URL), err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, c.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}

	return &Response{
		URL:        httpResp.Request.URL.String(),
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}, nil
}

// isTransient treats 5xx, 429 and per-attempt timeouts as retryable. A
// cancelled parent context never is.
func isTransient(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// acceptJSON keeps HTML interstitials served with 200 out of the cache
func acceptJSON(resp *Response) error {
	if !json.Valid(resp.Body) {
		return fmt.Errorf("fetch: %s: body is not JSON: %s", RedactSecrets(resp.URL), snippet(resp.Body))
	}
	return nil
}

func snippet(body []byte) string {
	if len(body) > snippetBytes {
		body = body[:snippetBytes]
	}
	return strings.TrimSpace(string(body))
}
