package arbeitnow

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/jobscout/internal/domain"
	jobdomain "github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/pkg/fetch"
)

const page1 = `{
  "data": [
    {"slug": "go-dev-berlin", "company_name": "Acme GmbH", "title": "Go Developer", "description": "<p>Golang and <b>Kafka</b></p>",
     "remote": false, "url": "https://arbeitnow.example/go-dev", "tags": ["Golang"], "job_types": ["full time"], "location": "Berlin", "created_at": 1767225600},
    {"slug": "pm-munich", "company_name": "Initech", "title": "Product Manager", "description": "roadmaps",
     "remote": false, "url": "https://arbeitnow.example/pm", "tags": [], "job_types": [], "location": "Munich", "created_at": 1767225600}
  ],
  "links": {"next": "%s/api/job-board-api?page=2"}
}`

const page2 = `{
  "data": [
    {"slug": "sales", "company_name": "Umbrella", "title": "Sales Lead", "description": "quota", "remote": true, "url": "u", "location": "Hamburg"}
  ],
  "links": {"next": "%s/api/job-board-api?page=3"}
}`

const page3 = `{
  "data": [
    {"slug": "go-remote", "company_name": "Globex", "title": "Senior Go Engineer", "description": "remote first",
     "remote": true, "url": "https://arbeitnow.example/go-remote", "tags": ["go"], "job_types": ["contract"], "location": "Germany"}
  ],
  "links": {"next": null}
}`

func newServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var pages []string
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		switch page {
		case "1":
			fmt.Fprintf(w, page1, srv.URL)
		case "2":
			fmt.Fprintf(w, page2, srv.URL)
		case "3":
			_, _ = w.Write([]byte(page3))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &pages
}

func TestSearch_FiltersAcrossPages(t *testing.T) {
	srv, pages := newServer(t)
	p, err := NewProvider(Config{BaseURL: srv.URL}, fetch.New(fetch.Config{}), nil)
	require.NoError(t, err)

	got, err := p.Search(context.Background(), "go", "", 10)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"1", "2", "3"}, *pages)

	assert.Equal(t, "Go Developer", got[0].Title)
	assert.Equal(t, "Golang and Kafka", got[0].Description)
	assert.Equal(t, domain.JobTypeFullTime, got[0].JobType)
	assert.Contains(t, got[0].TechStack, "kafka")
	assert.Equal(t, 2026, got[0].PostedAt.Year())

	assert.Equal(t, "Senior Go Engineer", got[1].Title)
	assert.Equal(t, domain.RemoteFull, got[1].RemoteOption)
	assert.Equal(t, domain.JobTypeContract, got[1].JobType)
}

func TestSearch_LocationFilter(t *testing.T) {
	srv, _ := newServer(t)
	p, err := NewProvider(Config{BaseURL: srv.URL}, fetch.New(fetch.Config{}), nil)
	require.NoError(t, err)

	got, err := p.Search(context.Background(), "", "munich", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Initech", got[0].Company)

	got, err = p.Search(context.Background(), "go", "Remote", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Globex", got[0].Company)
}

func TestSearch_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p, err := NewProvider(Config{BaseURL: srv.URL}, fetch.New(fetch.Config{}), nil)
	require.NoError(t, err)

	got, err := p.Search(context.Background(), "go", "", 10)
	assert.Empty(t, got)
	assert.ErrorIs(t, err, jobdomain.ErrSourceUnavailable)
}
