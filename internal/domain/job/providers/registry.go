package providers

import (
	"fmt"
	"time"

	"github.com/honeycarbs/jobscout/internal/config"
	"github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/internal/domain/job/providers/adzuna"
	"github.com/honeycarbs/jobscout/internal/domain/job/providers/arbeitnow"
	"github.com/honeycarbs/jobscout/internal/domain/job/providers/base"
	"github.com/honeycarbs/jobscout/internal/domain/job/providers/indeed"
	"github.com/honeycarbs/jobscout/internal/domain/job/providers/linkedin"
	"github.com/honeycarbs/jobscout/internal/domain/job/providers/remotive"
	"github.com/honeycarbs/jobscout/internal/domain/job/providers/weworkremotely"
	adzunaapi "github.com/honeycarbs/jobscout/pkg/adzuna"
	"github.com/honeycarbs/jobscout/pkg/fetch"
	"github.com/honeycarbs/jobscout/pkg/logging"
	"github.com/honeycarbs/jobscout/pkg/ratelimit"
	"github.com/honeycarbs/jobscout/pkg/render"
)

// Source describes a known adapter, enabled or not
type Source struct {
	Name     string
	Kind     string
	Enabled  bool
	MinDelay time.Duration
	MaxDelay time.Duration
}

// Deps are the shared collaborators of every adapter
type Deps struct {
	// Fetcher carries transport, cache and any replay override; each adapter
	// receives a copy paced by its own limiter
	Fetcher *fetch.Client

	// Renderer serves JavaScript-rendered sources; when nil a headless
	// Chrome is started on demand
	Renderer render.Renderer

	Logger *logging.Logger
}

// Registry is the name → Provider map built once from configuration
type Registry struct {
	providers []job.Provider
	sources   []Source
	chrome    *render.Chrome
}

// NewRegistry builds every enabled adapter in a stable order
func NewRegistry(cfg config.Config, deps Deps) (*Registry, error) {
	if deps.Fetcher == nil {
		return nil, fmt.Errorf("providers: fetch client is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	s := cfg.Search
	defMin, defMax := config.Seconds(s.RateLimitMinDelay), config.Seconds(s.RateLimitMaxDelay)
	conMin, conMax := config.Seconds(s.LinkedInMinDelay), config.Seconds(s.LinkedInMaxDelay)

	r := &Registry{}
	paced := func(min, max time.Duration) (*fetch.Client, *ratelimit.Limiter, error) {
		l, err := ratelimit.New(min, max)
		if err != nil {
			return nil, nil, err
		}
		return deps.Fetcher.WithLimiter(l), l, nil
	}

	type entry struct {
		name     string
		kind     string
		enabled  bool
		min, max time.Duration
		build    func(*fetch.Client, *ratelimit.Limiter, *logging.Logger) (job.Provider, error)
	}

	entries := []entry{
		{adzuna.Name, "rest", cfg.Sources.EnableAdzuna, defMin, defMax,
			func(fc *fetch.Client, _ *ratelimit.Limiter, l *logging.Logger) (job.Provider, error) {
				client, err := adzunaapi.NewClient(adzunaapi.Config{
					AppID:   cfg.Adzuna.AppID,
					AppKey:  cfg.Adzuna.AppKey,
					Country: cfg.Adzuna.Country,
				}, fc)
				if err != nil {
					return nil, err
				}
				return adzuna.NewProvider(client, cfg.Adzuna.Country, l)
			}},
		{arbeitnow.Name, "rest", cfg.Sources.EnableArbeitnow, defMin, defMax,
			func(fc *fetch.Client, _ *ratelimit.Limiter, l *logging.Logger) (job.Provider, error) {
				return arbeitnow.NewProvider(arbeitnow.Config{MaxPages: s.MaxPages}, fc, l)
			}},
		{remotive.Name, "rest", cfg.Sources.EnableRemotive, defMin, defMax,
			func(fc *fetch.Client, _ *ratelimit.Limiter, l *logging.Logger) (job.Provider, error) {
				return remotive.NewProvider(remotive.Config{}, fc, l)
			}},
		{weworkremotely.Name, "rss", cfg.Sources.EnableWeWorkRemotely, defMin, defMax,
			func(fc *fetch.Client, _ *ratelimit.Limiter, l *logging.Logger) (job.Provider, error) {
				return weworkremotely.NewProvider(weworkremotely.Config{Feeds: cfg.Sources.WeWorkRemotelyFeeds}, fc, l)
			}},
		{linkedin.Name, "html", cfg.Sources.EnableLinkedIn, conMin, conMax,
			func(fc *fetch.Client, _ *ratelimit.Limiter, l *logging.Logger) (job.Provider, error) {
				return linkedin.NewProvider(linkedin.Config{MaxPages: s.MaxPages}, fc, l)
			}},
		{indeed.Name, "rendered", cfg.Sources.EnableIndeed, conMin, conMax,
			func(fc *fetch.Client, lim *ratelimit.Limiter, l *logging.Logger) (job.Provider, error) {
				renderer := deps.Renderer
				if renderer == nil {
					r.chrome = render.NewChrome(render.ChromeConfig{
						UserAgent:   fc.UserAgent(),
						Timeout:     config.Seconds(cfg.Chrome.Timeout),
						SettleDelay: config.Seconds(cfg.Chrome.SettleDelay),
						WaitFor:     "#mosaic-jobResults, body",
						Limiter:     lim,
						ExecPath:    cfg.Chrome.ExecPath,
					})
					renderer = r.chrome
				} else if h, ok := renderer.(render.HTTP); ok {
					renderer = render.HTTP{Client: h.Client.WithLimiter(lim), Accept: base.RejectMarkers(indeed.BlockMarkers)}
				}
				return indeed.NewProvider(indeed.Config{MaxPages: s.MaxPages}, renderer, l)
			}},
	}

	for _, e := range entries {
		r.sources = append(r.sources, Source{Name: e.name, Kind: e.kind, Enabled: e.enabled, MinDelay: e.min, MaxDelay: e.max})
		if !e.enabled {
			continue
		}

		fc, lim, err := paced(e.min, e.max)
		if err != nil {
			return nil, fmt.Errorf("providers: %s limiter: %w", e.name, err)
		}
		p, err := e.build(fc, lim, logger.Named(e.name))
		if err != nil {
			return nil, fmt.Errorf("providers: build %s: %w", e.name, err)
		}
		r.providers = append(r.providers, p)
		logger.Debug("source enabled", "source", e.name, "min_delay", e.min, "max_delay", e.max)
	}

	if len(r.providers) == 0 {
		return nil, fmt.Errorf("providers: %w", job.ErrNoSources)
	}
	return r, nil
}

// Providers returns the enabled adapters
func (r *Registry) Providers() []job.Provider {
	out := make([]job.Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Get looks up an enabled adapter by name
func (r *Registry) Get(name string) (job.Provider, bool) {
	for _, p := range r.providers {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Sources describes every known adapter, enabled or not
func (r *Registry) Sources() []Source {
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Close releases the headless browser if one was started
func (r *Registry) Close() {
	if r.chrome != nil {
		r.chrome.Close()
	}
}
