package remotive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/pkg/fetch"
)

const payload = `{
  "job-count": 3,
  "jobs": [
    {"id": 101, "url": "https://remotive.example/101", "title": "Backend Engineer (Go)", "company_name": "Acme",
     "category": "Software Development", "tags": ["golang", "aws"], "job_type": "full_time",
     "publication_date": "2026-02-10T08:30:00", "candidate_required_location": "Worldwide",
     "salary": "$120k - $150k", "description": "<p>Ship Go services</p>"},
    {"id": 102, "url": "https://remotive.example/102", "title": "Go Engineer", "company_name": "Initech",
     "category": "Software Development", "tags": [], "job_type": "contract",
     "publication_date": "2026-02-09T08:30:00", "candidate_required_location": "USA Only", "salary": "", "description": ""},
    {"id": 103, "url": "https://remotive.example/103", "title": "Go Engineer", "company_name": "Globex",
     "category": "Software Development", "tags": [], "job_type": "full_time",
     "publication_date": "bad", "candidate_required_location": "Europe", "salary": "", "description": ""}
  ]
}`

func TestSearch_MapsAndFiltersRegion(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/api/remote-jobs", r.URL.Path)
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{BaseURL: srv.URL}, fetch.New(fetch.Config{}), nil)
	require.NoError(t, err)

	got, err := p.Search(context.Background(), "golang", "Europe", 10)
	require.NoError(t, err)

	assert.Equal(t, "limit=20&search=golang", gotQuery)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, domain.RemoteFull, first.RemoteOption)
	assert.Equal(t, domain.JobTypeFullTime, first.JobType)
	assert.Equal(t, 120000.0, first.SalaryMin)
	assert.Equal(t, 150000.0, first.SalaryMax)
	assert.Equal(t, "USD", first.Currency)
	assert.Equal(t, "101", first.ExternalID)
	assert.Equal(t, "Ship Go services", first.Description)
	assert.Equal(t, []string{"go", "aws"}, first.TechStack)
	assert.False(t, first.PostedAt.IsZero())

	assert.Equal(t, "Globex", got[1].Company)
	assert.True(t, got[1].PostedAt.IsZero())
}

func TestSearch_RespectsBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{BaseURL: srv.URL}, fetch.New(fetch.Config{}), nil)
	require.NoError(t, err)

	got, err := p.Search(context.Background(), "go", "", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRegionMatches(t *testing.T) {
	assert.True(t, regionMatches("USA Only", ""))
	assert.True(t, regionMatches("USA Only", "remote"))
	assert.True(t, regionMatches("Worldwide", "Berlin"))
	assert.True(t, regionMatches("Europe, UK", "uk"))
	assert.False(t, regionMatches("USA Only", "Europe"))
}
