package mcp

import (
	"github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/internal/mcp/tools"
)

// Resources are the backends exposed as MCP tools. Nil members disable the
// tools that need them; Searcher is required.
type Resources struct {
	Searcher      job.Searcher
	Repository    job.Repository
	Exporter      tools.Exporter
	SpreadsheetID string
	Graph         tools.GraphReader
}

func (r Resources) toolOptions() []tools.Option {
	opts := []tools.Option{
		tools.WithJobSearch(r.Searcher, r.Repository),
		tools.WithListingGet(r.Repository),
		tools.WithGraphInspect(r.Graph),
	}
	if r.Exporter != nil {
		opts = append(opts, tools.WithSheetsExport(r.Exporter, r.Searcher, r.Repository, r.SpreadsheetID))
	}
	return opts
}
