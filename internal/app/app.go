// Package app assembles the search service and its collaborators from
// configuration.
package app

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/honeycarbs/jobscout/internal/config"
	"github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/internal/domain/job/providers"
	"github.com/honeycarbs/jobscout/internal/mcp"
	"github.com/honeycarbs/jobscout/internal/mcp/tools"
	"github.com/honeycarbs/jobscout/internal/metrics"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

// App holds the wired components of one process
type App struct {
	Config   config.Config
	Logger   *logging.Logger
	Metrics  *metrics.Metrics
	Gatherer *prometheus.Registry
	Sources  *providers.Registry
	Searcher job.Searcher

	// Optional collaborators; nil when not configured
	Repository job.Repository
	Exporter   tools.Exporter
	Graph      tools.GraphReader
}

func newApp(
	cfg config.Config,
	logger *logging.Logger,
	m *metrics.Metrics,
	gatherer *prometheus.Registry,
	sources *providers.Registry,
	searcher job.Searcher,
	repo job.Repository,
	exporter tools.Exporter,
	graph tools.GraphReader,
) *App {
	return &App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    m,
		Gatherer:   gatherer,
		Sources:    sources,
		Searcher:   searcher,
		Repository: repo,
		Exporter:   exporter,
		Graph:      graph,
	}
}

// MCPServer exposes the app over MCP streamable HTTP
func (a *App) MCPServer(version string) (*mcp.Server, error) {
	return mcp.NewServer(a.Logger.Named("mcp"), a.Config.Server, mcp.Resources{
		Searcher:      a.Searcher,
		Repository:    a.Repository,
		Exporter:      a.Exporter,
		SpreadsheetID: a.Config.Sheets.SpreadsheetID,
		Graph:         a.Graph,
	},
		mcp.WithMetrics(a.Metrics, a.Gatherer),
		mcp.WithVersion(version),
	)
}
