package harness

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/honeycarbs/jobscout/pkg/fetch"
)

// ErrNoInteraction is returned for requests the cassette never recorded
var ErrNoInteraction = errors.New("harness: no recorded interaction")

// Player serves a cassette's responses in place of the network. Interactions
// sharing a request are served in recorded order; the last one repeats.
type Player struct {
	mu     sync.Mutex
	byKey  map[string][]RecordedResponse
	served map[string]int
	misses []string
}

// NewPlayer indexes a cassette for replay
func NewPlayer(c *Cassette) *Player {
	p := &Player{
		byKey:  make(map[string][]RecordedResponse),
		served: make(map[string]int),
	}
	if c == nil {
		return p
	}
	for _, in := range c.Interactions {
		key := interactionKey(in.Request.Method, in.Request.URL)
		p.byKey[key] = append(p.byKey[key], in.Response)
	}
	return p
}

// Override is the fetch.RequestFunc that replays the cassette
func (p *Player) Override() fetch.RequestFunc {
	return func(ctx context.Context, req fetch.Request) (*fetch.Response, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key := interactionKey(req.Method, req.URL)

		p.mu.Lock()
		defer p.mu.Unlock()

		recorded, ok := p.byKey[key]
		if !ok {
			p.misses = append(p.misses, key)
			return nil, fmt.Errorf("%w: %s", ErrNoInteraction, key)
		}
		i := p.served[key]
		if i >= len(recorded) {
			i = len(recorded) - 1
		}
		p.served[key]++

		rec := recorded[i]
		header := make(http.Header, len(rec.Headers))
		for k, v := range rec.Headers {
			header.Set(k, v)
		}
		return &fetch.Response{
			URL:        req.URL,
			StatusCode: rec.Status,
			Header:     header,
			Body:       []byte(rec.Body),
		}, nil
	}
}

// Misses lists requests that had no recorded interaction
func (p *Player) Misses() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.misses))
	copy(out, p.misses)
	return out
}

// Served reports how many times a request was replayed
func (p *Player) Served(method, rawURL string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.served[interactionKey(method, rawURL)]
}
