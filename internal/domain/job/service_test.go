package job_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/domain/job"
)

type stubProvider struct {
	name   string
	search func(ctx context.Context, maxResults int) ([]domain.NormalizedListing, error)
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(ctx context.Context, _, _ string, maxResults int) ([]domain.NormalizedListing, error) {
	return s.search(ctx, maxResults)
}

func listings(source string, n int, prefix string) []domain.NormalizedListing {
	out := make([]domain.NormalizedListing, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.NormalizedListing{
			Title:   fmt.Sprintf("%s role %d", prefix, i),
			Company: "Company " + prefix,
			Source:  source,
		})
	}
	return out
}

// returning ignores the budget so tests can check the orchestrator enforces it
func returning(name string, l []domain.NormalizedListing, err error) *stubProvider {
	return &stubProvider{name: name, search: func(context.Context, int) ([]domain.NormalizedListing, error) {
		return l, err
	}}
}

func honouring(name string, l []domain.NormalizedListing) *stubProvider {
	return &stubProvider{name: name, search: func(_ context.Context, max int) ([]domain.NormalizedListing, error) {
		if len(l) > max {
			return l[:max], nil
		}
		return l, nil
	}}
}

func newService(t *testing.T, settings job.Settings, providers ...job.Provider) *job.Service {
	t.Helper()
	svc, err := job.NewService(job.WithProviders(providers...), job.WithSettings(settings))
	require.NoError(t, err)
	return svc
}

func TestSearch_RejectsMalformedQuery(t *testing.T) {
	svc := newService(t, job.Settings{}, returning("a", nil, nil))

	_, err := svc.Search(context.Background(), domain.Query{Keywords: "go", MaxTotalResults: 0})
	assert.ErrorIs(t, err, job.ErrInvalidQuery)

	_, err = svc.Search(context.Background(), domain.Query{Keywords: "go", MaxTotalResults: -3})
	assert.ErrorIs(t, err, job.ErrInvalidQuery)
}

func TestSearch_BlankTermsBrowseSources(t *testing.T) {
	svc := newService(t, job.Settings{}, returning("a", listings("a", 3, "go"), nil))

	res, err := svc.Search(context.Background(), domain.Query{MaxTotalResults: 10})
	require.NoError(t, err)
	assert.Len(t, res.Listings, 3)
}

func TestNewService_RequiresProviders(t *testing.T) {
	_, err := job.NewService()
	assert.ErrorIs(t, err, job.ErrNoSources)

	_, err = job.NewService(job.WithProviders(returning("a", nil, nil), returning("a", nil, nil)))
	assert.Error(t, err)
}

func TestSearch_MergesAndDedups(t *testing.T) {
	a := listings("a", 6, "alpha")
	b := listings("b", 6, "beta")
	// one listing posted on both sources
	b = append(b, domain.NormalizedListing{Title: "ALPHA role 0", Company: "company alpha", Source: "b"})

	svc := newService(t, job.Settings{MaxResultsPerSite: 25, MaxConcurrent: 2},
		honouring("a", a), honouring("b", b))

	res, err := svc.Search(context.Background(), domain.Query{Keywords: "role", MaxTotalResults: 25})
	require.NoError(t, err)

	assert.Len(t, res.Listings, 12)
	require.Len(t, res.Sources, 2)
	for _, s := range res.Sources {
		assert.NoError(t, s.Err)
	}
}

func TestSearch_TruncatesToTotal(t *testing.T) {
	svc := newService(t, job.Settings{MaxResultsPerSite: 25, MaxConcurrent: 2},
		returning("a", listings("a", 6, "alpha"), nil),
		returning("b", listings("b", 7, "beta"), nil))

	res, err := svc.Search(context.Background(), domain.Query{Keywords: "role", MaxTotalResults: 10})
	require.NoError(t, err)

	assert.Len(t, res.Listings, 10)
}

func TestSearch_BudgetKeepsSourceOrder(t *testing.T) {
	all := listings("a", 20, "alpha")
	svc := newService(t, job.Settings{MaxResultsPerSite: 25, MaxConcurrent: 2}, returning("a", all, nil))

	res, err := svc.Search(context.Background(), domain.Query{Keywords: "role", MaxTotalResults: 5})
	require.NoError(t, err)

	require.Len(t, res.Listings, 5)
	assert.Equal(t, all[:5], res.Listings)
}

func TestSearch_IsolatesFailingSource(t *testing.T) {
	boom := errors.New("connection refused")
	svc := newService(t, job.Settings{MaxConcurrent: 2},
		returning("good", listings("good", 4, "good"), nil),
		returning("bad", nil, boom),
		&stubProvider{name: "panicky", search: func(context.Context, int) ([]domain.NormalizedListing, error) {
			panic("nil map")
		}},
	)

	res, err := svc.Search(context.Background(), domain.Query{Keywords: "role", MaxTotalResults: 30})
	require.NoError(t, err)

	assert.Len(t, res.Listings, 4)
	bySource := map[string]domain.AdapterResult{}
	for _, s := range res.Sources {
		bySource[s.Source] = s
	}
	require.Len(t, bySource, 3)
	assert.NoError(t, bySource["good"].Err)
	assert.ErrorIs(t, bySource["bad"].Err, boom)
	assert.ErrorContains(t, bySource["panicky"].Err, "panic")
}

func TestSearch_KeepsPartialResultsWithAdvisoryError(t *testing.T) {
	svc := newService(t, job.Settings{MaxConcurrent: 1},
		returning("blocked", listings("blocked", 8, "page1"), fmt.Errorf("page 2: %w", job.ErrSoftBlocked)))

	res, err := svc.Search(context.Background(), domain.Query{Keywords: "role", MaxTotalResults: 20})
	require.NoError(t, err)

	assert.Len(t, res.Listings, 8)
	require.Len(t, res.Sources, 1)
	assert.ErrorIs(t, res.Sources[0].Err, job.ErrSoftBlocked)

	sum := res.Summaries()
	require.Len(t, sum, 1)
	assert.Equal(t, 8, sum[0].Count)
	assert.Contains(t, sum[0].Error, "soft block")
}

func TestSearch_DropsInvalidListings(t *testing.T) {
	bad := []domain.NormalizedListing{
		{Title: "Go Engineer", Company: "Acme", Source: "x"},
		{Title: "", Company: "Acme", Source: "x"},
		{Title: "Go Engineer", Company: "A", Source: "x"},
	}
	svc := newService(t, job.Settings{}, returning("x", bad, nil))

	res, err := svc.Search(context.Background(), domain.Query{Keywords: "go", MaxTotalResults: 10})
	require.NoError(t, err)

	assert.Len(t, res.Listings, 1)
}

func TestSearch_ConcurrencyBound(t *testing.T) {
	var (
		inFlight atomic.Int32
		mu       sync.Mutex
		peak     int32
	)
	slow := func(name string) *stubProvider {
		return &stubProvider{name: name, search: func(context.Context, int) ([]domain.NormalizedListing, error) {
			n := inFlight.Add(1)
			mu.Lock()
			if n > peak {
				peak = n
			}
			mu.Unlock()
			time.Sleep(20 * time.Millisecond)
			inFlight.Add(-1)
			return listings(name, 1, name), nil
		}}
	}

	svc := newService(t, job.Settings{MaxConcurrent: 1}, slow("a"), slow("b"), slow("c"))

	res, err := svc.Search(context.Background(), domain.Query{Keywords: "role", MaxTotalResults: 30})
	require.NoError(t, err)

	assert.Len(t, res.Listings, 3)
	assert.EqualValues(t, 1, peak)
}

func TestSearch_PassesPerSourceBudget(t *testing.T) {
	var got sync.Map
	record := func(name string) *stubProvider {
		return &stubProvider{name: name, search: func(_ context.Context, max int) ([]domain.NormalizedListing, error) {
			got.Store(name, max)
			return nil, nil
		}}
	}

	svc := newService(t, job.Settings{MaxResultsPerSite: 4, MaxConcurrent: 2}, record("a"), record("b"), record("c"))
	_, err := svc.Search(context.Background(), domain.Query{Keywords: "role", MaxTotalResults: 30})
	require.NoError(t, err)

	for _, name := range []string{"a", "b", "c"} {
		v, ok := got.Load(name)
		require.True(t, ok)
		assert.Equal(t, 4, v)
	}
}

func TestSearch_CancelledContext(t *testing.T) {
	ctxAware := func(name string) *stubProvider {
		return &stubProvider{name: name, search: func(ctx context.Context, _ int) ([]domain.NormalizedListing, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}}
	}
	svc := newService(t, job.Settings{MaxConcurrent: 2}, ctxAware("a"), ctxAware("b"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Search(ctx, domain.Query{Keywords: "role", MaxTotalResults: 10})
	require.NoError(t, err)

	assert.Empty(t, res.Listings)
	for _, s := range res.Sources {
		assert.ErrorIs(t, s.Err, context.Canceled)
	}
}

func TestPerSourceBudget(t *testing.T) {
	assert.Equal(t, 5, job.PerSourceBudget(25, 10, 2))
	assert.Equal(t, 25, job.PerSourceBudget(25, 100, 2))
	assert.Equal(t, 1, job.PerSourceBudget(25, 1, 6))
	assert.Equal(t, 1, job.PerSourceBudget(25, 10, 0))
}
