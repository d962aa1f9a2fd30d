package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/jobscout/internal/config"
	"github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/pkg/fetch"
	"github.com/honeycarbs/jobscout/pkg/render"
)

func baseConfig() config.Config {
	var c config.Config
	c.ApplyDefaults()
	return c
}

func TestNewRegistry_BuildsEnabledInOrder(t *testing.T) {
	cfg := baseConfig()
	cfg.Sources.EnableRemotive = true
	cfg.Sources.EnableLinkedIn = true
	cfg.Sources.EnableIndeed = true

	reg, err := NewRegistry(cfg, Deps{
		Fetcher:  fetch.New(fetch.Config{}),
		Renderer: render.HTTP{Client: fetch.New(fetch.Config{})},
	})
	require.NoError(t, err)
	defer reg.Close()

	var names []string
	for _, p := range reg.Providers() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"remotive", "linkedin", "indeed"}, names)

	_, ok := reg.Get("linkedin")
	assert.True(t, ok)
	_, ok = reg.Get("adzuna")
	assert.False(t, ok)
}

func TestNewRegistry_DescribesAllSources(t *testing.T) {
	cfg := baseConfig()
	cfg.Sources.EnableArbeitnow = true

	reg, err := NewRegistry(cfg, Deps{Fetcher: fetch.New(fetch.Config{})})
	require.NoError(t, err)

	sources := reg.Sources()
	require.Len(t, sources, 6)

	byName := map[string]Source{}
	for _, s := range sources {
		byName[s.Name] = s
	}
	assert.True(t, byName["arbeitnow"].Enabled)
	assert.False(t, byName["adzuna"].Enabled)
	assert.Equal(t, time.Second, byName["arbeitnow"].MinDelay)
	assert.Equal(t, 3*time.Second, byName["linkedin"].MinDelay)
	assert.Equal(t, 8*time.Second, byName["indeed"].MaxDelay)
	assert.Equal(t, "rss", byName["weworkremotely"].Kind)
}

func TestNewRegistry_NothingEnabled(t *testing.T) {
	var cfg config.Config
	cfg.ApplyDefaults()

	_, err := NewRegistry(cfg, Deps{Fetcher: fetch.New(fetch.Config{})})
	assert.ErrorIs(t, err, job.ErrNoSources)
}

func TestNewRegistry_InvalidDelays(t *testing.T) {
	cfg := baseConfig()
	cfg.Sources.EnableRemotive = true
	cfg.Search.RateLimitMinDelay, cfg.Search.RateLimitMaxDelay = 2, 1

	_, err := NewRegistry(cfg, Deps{Fetcher: fetch.New(fetch.Config{})})
	assert.ErrorContains(t, err, "remotive limiter")
}

func TestNewRegistry_RequiresFetcher(t *testing.T) {
	_, err := NewRegistry(baseConfig(), Deps{})
	assert.Error(t, err)
}

func TestNewRegistry_AdzunaNeedsCredentials(t *testing.T) {
	cfg := baseConfig()
	cfg.Sources.EnableAdzuna = true

	_, err := NewRegistry(cfg, Deps{Fetcher: fetch.New(fetch.Config{})})
	assert.ErrorContains(t, err, "build adzuna")

	cfg.Adzuna.AppID, cfg.Adzuna.AppKey = "id", "key"
	reg, err := NewRegistry(cfg, Deps{Fetcher: fetch.New(fetch.Config{})})
	require.NoError(t, err)
	_, ok := reg.Get("adzuna")
	assert.True(t, ok)
}

func TestNewRegistry_PacesEachSource(t *testing.T) {
	cfg := baseConfig()
	cfg.Sources.EnableRemotive = true
	cfg.Search.RateLimitMinDelay, cfg.Search.RateLimitMaxDelay = 0.05, 0.05

	calls := 0
	fc := fetch.New(fetch.Config{}).WithOverride(func(_ context.Context, req fetch.Request) (*fetch.Response, error) {
		calls++
		return &fetch.Response{URL: req.URL, StatusCode: 200, Body: []byte(`{"jobs":[]}`)}, nil
	})

	reg, err := NewRegistry(cfg, Deps{Fetcher: fc})
	require.NoError(t, err)

	p, _ := reg.Get("remotive")
	start := time.Now()
	_, _ = p.Search(context.Background(), "go", "", 5)
	_, _ = p.Search(context.Background(), "go", "", 5)

	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}
