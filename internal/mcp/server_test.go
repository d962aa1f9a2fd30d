package mcp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/jobscout/internal/config"
	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/metrics"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

type stubSearcher struct{}

func (stubSearcher) Search(_ context.Context, q domain.Query) (domain.SearchResult, error) {
	return domain.SearchResult{
		Listings: []domain.NormalizedListing{{
			Title:   "Go Engineer",
			Company: "Acme",
			Source:  "remotive",
		}},
		Sources:   []domain.AdapterResult{{Source: "remotive"}},
		FetchedAt: time.Now(),
	}, nil
}

func newTestServer(t *testing.T) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	srv, err := NewServer(logging.Nop(), config.ServerConfig{Host: "127.0.0.1", Port: "0"},
		Resources{Searcher: stubSearcher{}},
		WithMetrics(m, reg),
		WithVersion("test"),
	)
	require.NoError(t, err)
	return srv, reg
}

func TestNewServer_RequiresSearcher(t *testing.T) {
	_, err := NewServer(logging.Nop(), config.ServerConfig{}, Resources{})
	assert.ErrorContains(t, err, "searcher is required")
}

func TestServer_HealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	assert.Equal(t, []string{"job_search"}, srv.Tools())

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + HealthPath)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = http.Get(ts.URL + MetricsPath)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `jobscout_http_requests_total{method="GET",path="/healthz",status="200"} 1`)
}

func TestServer_StreamableToolCall(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "server-test", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{Endpoint: ts.URL + StreamPath}, nil)
	require.NoError(t, err)
	defer cs.Close()

	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "job_search",
		Arguments: map[string]any{"keywords": "golang"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.NotEmpty(t, res.Content)

	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Go Engineer at Acme")
}

func TestServer_RunAndShutdown(t *testing.T) {
	srv, _ := newTestServer(t)

	done := make(chan error, 1)
	go func() { done <- srv.Run() }()

	// second Run is a no-op
	require.Eventually(t, func() bool {
		return srv.started.Load()
	}, time.Second, 10*time.Millisecond)
	assert.NoError(t, srv.Run())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-done)
}
