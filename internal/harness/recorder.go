package harness

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/honeycarbs/jobscout/pkg/fetch"
)

// Recorder is an http.RoundTripper that captures live traffic into a
// cassette. Credential query parameters are redacted in what it keeps.
type Recorder struct {
	next http.RoundTripper

	mu       sync.Mutex
	cassette Cassette
}

// NewRecorder wraps next, or http.DefaultTransport when nil
func NewRecorder(name string, next http.RoundTripper) *Recorder {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Recorder{
		next:     next,
		cassette: Cassette{Name: name},
	}
}

// RoundTrip performs the request and records the exchange
func (r *Recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("harness: record body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	headers := make(map[string]string)
	for _, k := range []string{"Content-Type", "Retry-After", "Location"} {
		if v := resp.Header.Get(k); v != "" {
			headers[k] = v
		}
	}
	if loc, ok := headers["Location"]; ok {
		headers["Location"] = fetch.RedactSecrets(loc)
	}
	if len(headers) == 0 {
		headers = nil
	}

	r.mu.Lock()
	r.cassette.Interactions = append(r.cassette.Interactions, Interaction{
		Request:  RecordedRequest{Method: req.Method, URL: fetch.RedactSecrets(req.URL.String())},
		Response: RecordedResponse{Status: resp.StatusCode, Headers: headers, Body: string(body)},
	})
	r.mu.Unlock()

	return resp, nil
}

// Client returns an http.Client recording through r
func (r *Recorder) Client(timeout time.Duration) *http.Client {
	return &http.Client{Transport: r, Timeout: timeout}
}

// Cassette returns a snapshot of what was recorded so far
func (r *Recorder) Cassette() *Cassette {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.cassette
	c.Interactions = append([]Interaction(nil), r.cassette.Interactions...)
	return &c
}

// Save writes the recording to path
func (r *Recorder) Save(path string) error {
	return r.Cassette().Save(path)
}
