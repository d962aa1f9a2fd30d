package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// SecretParams are query parameters carrying credentials. They never reach
// cache keys or recordings.
var SecretParams = []string{"app_id", "app_key", "api_key", "apikey", "token", "access_token"}

// RedactedValue replaces secret parameter values in recordings
const RedactedValue = "REDACTED"

type cachedResponse struct {
	URL        string      `json:"url"`
	StatusCode int         `json:"status"`
	Header     http.Header `json:"header,omitempty"`
	Body       []byte      `json:"body"`
}

func cacheKey(req Request) string {
	return "fetch:" + req.Method + ":" + StripSecrets(req.URL)
}

// StripSecrets removes SecretParams from rawURL. Unparseable input is
// returned as is.
func StripSecrets(rawURL string) string {
	return rewriteSecrets(rawURL, func(q url.Values, k string) { q.Del(k) })
}

// RedactSecrets replaces the values of SecretParams in rawURL with
// RedactedValue
func RedactSecrets(rawURL string) string {
	return rewriteSecrets(rawURL, func(q url.Values, k string) { q.Set(k, RedactedValue) })
}

// IsSecretParam reports whether name is one of SecretParams, ignoring case
func IsSecretParam(name string) bool {
	for _, s := range SecretParams {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

func rewriteSecrets(rawURL string, rewrite func(url.Values, string)) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.RawQuery == "" {
		return rawURL
	}
	q := u.Query()
	changed := false
	for k := range q {
		if IsSecretParam(k) {
			rewrite(q, k)
			changed = true
		}
	}
	if !changed {
		return rawURL
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Cache failures are never fatal: a broken cache degrades to live fetching.
func (c *Client) loadCached(ctx context.Context, req Request, key string) (*Response, bool) {
	if c.cache == nil || req.Method != http.MethodGet {
		return nil, false
	}
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var cr cachedResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, false
	}
	resp := &Response{
		URL:        cr.URL,
		StatusCode: cr.StatusCode,
		Header:     cr.Header,
		Body:       cr.Body,
		FromCache:  true,
	}
	if req.Accept != nil && req.Accept(resp) != nil {
		return nil, false
	}
	return resp, true
}

func (c *Client) storeCached(ctx context.Context, req Request, key string, resp *Response) {
	if c.cache == nil || req.Method != http.MethodGet || resp == nil {
		return
	}
	raw, err := json.Marshal(cachedResponse{
		URL:        StripSecrets(resp.URL),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	})
	if err != nil {
		return
	}
	_ = c.cache.Set(ctx, key, raw, c.cacheTTL)
}
