package job

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

const (
	DefaultMaxResultsPerSite = 25
	DefaultMaxConcurrent     = 2

	tracerName = "github.com/honeycarbs/jobscout/internal/domain/job"
)

// Searcher is what callers of the orchestrator depend on
type Searcher interface {
	Search(ctx context.Context, q domain.Query) (domain.SearchResult, error)
}

// Recorder observes adapter runs; implemented by the metrics package
type Recorder interface {
	ObserveSource(source string, listings int, err error, elapsed time.Duration)
	ObserveSearch(listings int, elapsed time.Duration)
	SourceStarted(source string)
	SourceFinished(source string)
}

// Settings are the orchestrator knobs
type Settings struct {
	MaxResultsPerSite int
	MaxConcurrent     int
}

// Option configures Service
type Option func(*config)

type config struct {
	providers []Provider
	settings  Settings
	logger    *logging.Logger
	recorder  Recorder
	tracer    trace.Tracer
	clock     func() time.Time
}

// WithProviders sets the enabled sources
func WithProviders(providers ...Provider) Option {
	return func(c *config) {
		c.providers = providers
	}
}

// WithSettings sets per-site and concurrency limits
func WithSettings(s Settings) Option {
	return func(c *config) {
		c.settings = s
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(c *config) {
		c.recorder = r
	}
}

// WithTracer overrides the OpenTelemetry tracer
func WithTracer(t trace.Tracer) Option {
	return func(c *config) {
		c.tracer = t
	}
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// Service fans a query out to every provider and merges what comes back
type Service struct {
	providers []Provider
	settings  Settings
	logger    *logging.Logger
	recorder  Recorder
	tracer    trace.Tracer
	clock     func() time.Time
}

// NewService builds Service from options
func NewService(opts ...Option) (*Service, error) {
	cfg := &config{
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.providers) == 0 {
		return nil, fmt.Errorf("job.Service: %w", ErrNoSources)
	}
	seen := make(map[string]struct{}, len(cfg.providers))
	for _, p := range cfg.providers {
		if p == nil {
			return nil, fmt.Errorf("job.Service: nil provider")
		}
		if _, dup := seen[p.Name()]; dup {
			return nil, fmt.Errorf("job.Service: provider %q registered twice", p.Name())
		}
		seen[p.Name()] = struct{}{}
	}

	s := &Service{
		providers: cfg.providers,
		settings:  cfg.settings,
		logger:    cfg.logger,
		recorder:  cfg.recorder,
		tracer:    cfg.tracer,
		clock:     cfg.clock,
	}
	if s.settings.MaxResultsPerSite <= 0 {
		s.settings.MaxResultsPerSite = DefaultMaxResultsPerSite
	}
	if s.settings.MaxConcurrent <= 0 {
		s.settings.MaxConcurrent = DefaultMaxConcurrent
	}
	if s.logger == nil {
		s.logger = logging.Nop()
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}

	return s, nil
}

// NewServiceWithDeps creates a Service with direct dependencies (Wire-compatible)
func NewServiceWithDeps(providers []Provider, settings Settings, logger *logging.Logger, recorder Recorder) (*Service, error) {
	return NewService(
		WithProviders(providers...),
		WithSettings(settings),
		WithLogger(logger),
		WithRecorder(recorder),
	)
}

// Sources lists the registered provider names
func (s *Service) Sources() []string {
	out := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		out = append(out, p.Name())
	}
	return out
}

// PerSourceBudget splits the total cap across n sources, capped per site and
// never below one
func PerSourceBudget(maxPerSite, total, n int) int {
	if n <= 0 {
		return 1
	}
	b := total / n
	if maxPerSite > 0 && maxPerSite < b {
		b = maxPerSite
	}
	if b < 1 {
		b = 1
	}
	return b
}

// Search runs every provider with bounded parallelism, then dedups and
// truncates. Source failures never fail the call; they are reported in
// SearchResult.Sources.
func (s *Service) Search(ctx context.Context, q domain.Query) (domain.SearchResult, error) {
	if err := validateQuery(q); err != nil {
		return domain.SearchResult{}, err
	}

	start := s.clock()
	budget := PerSourceBudget(s.settings.MaxResultsPerSite, q.MaxTotalResults, len(s.providers))

	ctx, span := s.tracer.Start(ctx, "job.Search", trace.WithAttributes(
		attribute.String("query.keywords", q.Keywords),
		attribute.String("query.location", q.Location),
		attribute.Int("query.max_total_results", q.MaxTotalResults),
		attribute.Int("search.per_source_budget", budget),
		attribute.Int("search.sources", len(s.providers)),
	))
	defer span.End()

	s.logger.Info("search started",
		"keywords", q.Keywords,
		"location", q.Location,
		"max_total_results", q.MaxTotalResults,
		"per_source_budget", budget,
		"sources", len(s.providers),
		"max_concurrent", s.settings.MaxConcurrent,
	)

	p := pool.NewWithResults[domain.AdapterResult]().WithMaxGoroutines(s.settings.MaxConcurrent)
	for _, prov := range s.providers {
		p.Go(func() domain.AdapterResult {
			return s.runProvider(ctx, prov, q, budget)
		})
	}
	results := p.Wait()

	merged := make([]domain.NormalizedListing, 0, len(results)*budget)
	failed := 0
	for _, r := range results {
		merged = append(merged, r.Listings...)
		if r.Err != nil {
			failed++
		}
	}

	listings := Dedup(merged)
	duplicates := len(merged) - len(listings)
	if len(listings) > q.MaxTotalResults {
		listings = listings[:q.MaxTotalResults]
	}

	elapsed := s.clock().Sub(start)
	s.recorder.ObserveSearch(len(listings), elapsed)
	span.SetAttributes(
		attribute.Int("search.raw_listings", len(merged)),
		attribute.Int("search.listings", len(listings)),
		attribute.Int("search.failed_sources", failed),
	)

	s.logger.Info("search completed",
		"raw_listings", len(merged),
		"listings", len(listings),
		"duplicates", duplicates,
		"failed_sources", failed,
		"elapsed", elapsed,
	)

	return domain.SearchResult{
		Listings:  listings,
		Sources:   results,
		FetchedAt: start,
	}, nil
}

func (s *Service) runProvider(ctx context.Context, p Provider, q domain.Query, budget int) (res domain.AdapterResult) {
	name := p.Name()
	res.Source = name

	ctx, span := s.tracer.Start(ctx, "job.Provider.Search", trace.WithAttributes(
		attribute.String("source", name),
		attribute.Int("budget", budget),
	))
	start := s.clock()
	s.recorder.SourceStarted(name)

	defer func() {
		if r := recover(); r != nil {
			res.Listings = nil
			res.Err = fmt.Errorf("%s: adapter panic: %v", name, r)
		}
		res.Duration = s.clock().Sub(start)

		s.recorder.SourceFinished(name)
		s.recorder.ObserveSource(name, len(res.Listings), res.Err, res.Duration)
		span.SetAttributes(attribute.Int("listings", len(res.Listings)))
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
			s.logger.Warn("source finished with error",
				"source", name,
				"listings", len(res.Listings),
				"err", res.Err,
				"elapsed", res.Duration,
			)
		} else {
			s.logger.Debug("source finished",
				"source", name,
				"listings", len(res.Listings),
				"elapsed", res.Duration,
			)
		}
		span.End()
	}()

	listings, err := p.Search(ctx, q.Keywords, q.Location, budget)

	// adapters own the invariant; this only guards against a misbehaving one
	kept := listings[:0:0]
	for _, l := range listings {
		if Valid(l) {
			kept = append(kept, l)
		}
	}
	if len(kept) > budget {
		kept = kept[:budget]
	}

	res.Listings = kept
	res.Err = err
	return res
}

func validateQuery(q domain.Query) error {
	if q.MaxTotalResults <= 0 {
		return fmt.Errorf("%w: max_total_results must be positive, got %d", ErrInvalidQuery, q.MaxTotalResults)
	}
	return nil
}

type nopRecorder struct{}

func (nopRecorder) ObserveSource(string, int, error, time.Duration) {}
func (nopRecorder) ObserveSearch(int, time.Duration)                {}
func (nopRecorder) SourceStarted(string)                            {}
func (nopRecorder) SourceFinished(string)                           {}

var _ Searcher = (*Service)(nil)
