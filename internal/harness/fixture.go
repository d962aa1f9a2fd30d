package harness

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/internal/domain/job/providers/base"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

// ErrFixtureTransport simulates a network failure
var ErrFixtureTransport = errors.New("harness: connection refused")

// Fixture scripts a paginated source. Page numbers are 1-based; zero
// disables BlockOnPage and FailOnPage.
type Fixture struct {
	Name        string
	Pages       [][]domain.RawListing
	BlockOnPage int
	FailOnPage  int
	Delay       time.Duration
	Probe       *Probe
}

// FixtureProvider is a job.Provider that serves a Fixture through the same
// pagination and normalization path as the real adapters.
type FixtureProvider struct {
	fx     Fixture
	logger *logging.Logger
	calls  atomic.Int64
}

// NewFixtureProvider builds a provider for fx
func NewFixtureProvider(fx Fixture, logger *logging.Logger) *FixtureProvider {
	if logger == nil {
		logger = logging.Nop()
	}
	return &FixtureProvider{fx: fx, logger: logger}
}

func (p *FixtureProvider) Name() string {
	return p.fx.Name
}

// PagesFetched counts page requests served so far
func (p *FixtureProvider) PagesFetched() int {
	return int(p.calls.Load())
}

func (p *FixtureProvider) Search(ctx context.Context, _, _ string, maxResults int) ([]domain.NormalizedListing, error) {
	if p.fx.Probe != nil {
		p.fx.Probe.Enter()
		defer p.fx.Probe.Leave()
	}

	collector := base.Collector{Source: p.fx.Name, Logger: p.logger}
	return collector.Collect(ctx, maxResults, p.page)
}

func (p *FixtureProvider) page(ctx context.Context, n int) (base.Page, error) {
	p.calls.Add(1)
	if p.fx.Delay > 0 {
		select {
		case <-time.After(p.fx.Delay):
		case <-ctx.Done():
			return base.Page{}, ctx.Err()
		}
	}

	number := n + 1
	switch {
	case number == p.fx.BlockOnPage:
		return base.Page{}, fmt.Errorf("challenge page: %w", job.ErrSoftBlocked)
	case number == p.fx.FailOnPage:
		return base.Page{}, ErrFixtureTransport
	case n >= len(p.fx.Pages):
		return base.Page{Done: true}, nil
	}
	return base.Page{Raw: p.fx.Pages[n], Done: number == len(p.fx.Pages)}, nil
}

// Probe tracks how many fixture sources run at once
type Probe struct {
	current atomic.Int64
	peak    atomic.Int64
}

func (p *Probe) Enter() {
	n := p.current.Add(1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			return
		}
	}
}

func (p *Probe) Leave() {
	p.current.Add(-1)
}

// Peak is the highest concurrency observed
func (p *Probe) Peak() int {
	return int(p.peak.Load())
}

// RawPage generates n valid raw listings titled "<prefix> <i>"
func RawPage(prefix, company string, n int) []domain.RawListing {
	out := make([]domain.RawListing, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.RawListing{
			Title:    fmt.Sprintf("%s %d", prefix, i+1),
			Company:  company,
			Location: "Remote",
			URL:      fmt.Sprintf("https://jobs.example.com/%s/%d", company, i+1),
		})
	}
	return out
}

var _ job.Provider = (*FixtureProvider)(nil)
