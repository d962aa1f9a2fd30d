package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Request is one outbound call issued by a source adapter
type Request struct {
	Method string
	URL    string
	Header http.Header

	// Accept vets a 2xx response. A rejected response is neither cached nor
	// retried; it is returned together with the error Accept reports. A
	// cached entry Accept rejects is ignored.
	Accept func(*Response) error
}

// Response is a fully read HTTP response
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	FromCache  bool
}

// RequestFunc replaces the network round trip. Harnesses use it to serve
// recorded responses; when nil the client performs real HTTP requests.
type RequestFunc func(ctx context.Context, req Request) (*Response, error)

// Waiter paces outbound calls; satisfied by *ratelimit.Limiter
type Waiter interface {
	Wait(ctx context.Context) error
}

// Cache stores raw response payloads
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config defines fetch client settings
type Config struct {
	HTTPClient   *http.Client
	UserAgent    string
	Limiter      Waiter
	Override     RequestFunc
	Cache        Cache
	CacheTTL     time.Duration
	MaxAttempts  int           // includes the first attempt, minimum 1
	Backoff      time.Duration // linear step between retries
	Timeout      time.Duration // per attempt
	MaxBodyBytes int64
}

// StatusError reports a non-2xx response
type StatusError struct {
	URL        string
	StatusCode int
	Snippet    string
}

func (e *StatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("fetch: unexpected status %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("fetch: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Snippet)
}

// Transient reports whether retrying the same request may succeed
func (e *StatusError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
