package linkedin

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobdomain "github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/internal/domain/job/providers/base"
	"github.com/honeycarbs/jobscout/pkg/fetch"
)

func card(id int, title, company string) string {
	return fmt.Sprintf(`<li>
  <div class="base-card relative base-search-card job-search-card" data-entity-urn="urn:li:jobPosting:%d">
    <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/%d?refId=abc&amp;trackingId=xyz"></a>
    <div class="base-search-card__info">
      <h3 class="base-search-card__title">
        %s
      </h3>
      <h4 class="base-search-card__subtitle"><a href="/company/x">%s</a></h4>
      <div class="base-search-card__metadata">
        <span class="job-search-card__location">Berlin, Germany</span>
        <span class="job-search-card__salary-info">€70,000 - €85,000</span>
        <time class="job-search-card__listdate" datetime="2026-03-04">1 week ago</time>
      </div>
    </div>
  </div>
</li>`, id, id, title, company)
}

func cards(from, n int) string {
	var b strings.Builder
	for i := from; i < from+n; i++ {
		b.WriteString(card(i, fmt.Sprintf("Go Engineer %d", i), "Acme"))
	}
	return b.String()
}

func TestParseCards(t *testing.T) {
	raw, err := ParseCards([]byte(card(42, "Senior Go Engineer", "Acme GmbH") + card(43, "", "Nobody")))
	require.NoError(t, err)
	require.Len(t, raw, 2)

	first := raw[0]
	assert.Equal(t, "Senior Go Engineer", first.Title)
	assert.Equal(t, "Acme GmbH", first.Company)
	assert.Equal(t, "Berlin, Germany", first.Location)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/42", first.URL)
	assert.Equal(t, "42", first.ExternalID)
	assert.Equal(t, "€70,000 - €85,000", first.SalaryText)
	assert.Equal(t, 2026, first.PostedAt.Year())

	assert.Empty(t, raw[1].Title)

	empty, err := ParseCards([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSearch_PagesByOffset(t *testing.T) {
	var starts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := r.URL.Query().Get("start")
		starts = append(starts, start)
		assert.Equal(t, "golang", r.URL.Query().Get("keywords"))
		switch start {
		case "0":
			_, _ = w.Write([]byte(cards(0, PageSize)))
		case "25":
			_, _ = w.Write([]byte(cards(25, 3)))
		}
	}))
	defer srv.Close()

	p, err := NewProvider(Config{BaseURL: srv.URL}, fetch.New(fetch.Config{}), nil)
	require.NoError(t, err)

	got, err := p.Search(context.Background(), "golang", "Berlin", 40)
	require.NoError(t, err)

	assert.Len(t, got, 28)
	assert.Equal(t, []string{"0", "25"}, starts)
	assert.Equal(t, "EUR", got[0].Currency)
	assert.Equal(t, 70000.0, got[0].SalaryMin)
}

func TestSearch_AuthwallOnSecondPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") == "0" {
			_, _ = w.Write([]byte(cards(0, PageSize)))
			return
		}
		_, _ = w.Write([]byte(`<html><body><a href="https://www.linkedin.com/authwall?trk=x">Sign in</a></body></html>`))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{BaseURL: srv.URL}, fetch.New(fetch.Config{}), nil)
	require.NoError(t, err)

	got, err := p.Search(context.Background(), "golang", "", 50)
	assert.Len(t, got, PageSize)
	assert.ErrorIs(t, err, jobdomain.ErrSoftBlocked)
}

func TestSearch_Status999(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(base.StatusBlocked)
	}))
	defer srv.Close()

	p, err := NewProvider(Config{BaseURL: srv.URL}, fetch.New(fetch.Config{}), nil)
	require.NoError(t, err)

	got, err := p.Search(context.Background(), "golang", "", 10)
	assert.Empty(t, got)
	assert.ErrorIs(t, err, jobdomain.ErrSoftBlocked)
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	return nil
}

func TestSearch_ChallengePageIsNotCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			_, _ = w.Write([]byte(`<html><body><a href="https://www.linkedin.com/authwall?trk=x">Sign in</a></body></html>`))
			return
		}
		_, _ = w.Write([]byte(cards(0, 2)))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{BaseURL: srv.URL}, fetch.New(fetch.Config{Cache: &mapCache{}}), nil)
	require.NoError(t, err)
	ctx := context.Background()

	got, err := p.Search(ctx, "golang", "", 10)
	assert.Empty(t, got)
	require.ErrorIs(t, err, jobdomain.ErrSoftBlocked)

	got, err = p.Search(ctx, "golang", "", 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.EqualValues(t, 2, hits.Load())

	got, err = p.Search(ctx, "golang", "", 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.EqualValues(t, 2, hits.Load(), "healthy page is served from cache")
}
