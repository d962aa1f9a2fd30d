package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

// DefaultMaxResults is used when a caller leaves max_results unset
const DefaultMaxResults = 25

// JobSearchParams defines the arguments for the job_search tool
type JobSearchParams struct {
	Keywords   string `json:"keywords,omitempty" jsonschema:"Search keywords, e.g. golang backend engineer; leave keywords and location empty to browse the latest listings"`
	Location   string `json:"location,omitempty" jsonschema:"City, country or remote"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Total listings to return after dedup (default 25)"`
	Persist    bool   `json:"persist,omitempty" jsonschema:"Store the listings in the configured repository"`
}

// ListingView is the wire shape of a listing
type ListingView struct {
	ID             string   `json:"id" jsonschema:"Stable listing identifier"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location,omitempty"`
	JobType        string   `json:"job_type"`
	RemoteOption   string   `json:"remote_option"`
	SalaryMin      float64  `json:"salary_min,omitempty"`
	SalaryMax      float64  `json:"salary_max,omitempty"`
	Currency       string   `json:"currency,omitempty"`
	TechStack      []string `json:"tech_stack,omitempty"`
	Source         string   `json:"source"`
	ApplicationURL string   `json:"application_url,omitempty"`
	PostedAt       string   `json:"posted_at,omitempty"`
	Description    string   `json:"description,omitempty"`
}

// SourceView is the per-source diagnostic of a search
type SourceView struct {
	Source     string `json:"source"`
	Count      int    `json:"count"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// JobSearchResult is the structured response of job_search
type JobSearchResult struct {
	Listings  []ListingView `json:"listings"`
	Sources   []SourceView  `json:"sources"`
	Persisted int           `json:"persisted"`
	FetchedAt string        `json:"fetched_at"`
}

type jobSearchTool struct {
	searcher job.Searcher
	repo     job.Repository
	logger   *logging.Logger
}

// WithJobSearch registers the job_search tool. repo may be nil, in which
// case persist requests are rejected.
func WithJobSearch(searcher job.Searcher, repo job.Repository) Option {
	return func(reg *registry) {
		t := jobSearchTool{searcher: searcher, repo: repo, logger: reg.logger.Named("job_search")}
		addTool(reg, &sdkmcp.Tool{
			Name:        "job_search",
			Description: "Search the enabled job boards concurrently and return normalized, deduplicated listings",
		}, t.handle)
	}
}

func (t jobSearchTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params JobSearchParams) (*sdkmcp.CallToolResult, JobSearchResult, error) {
	if params.MaxResults == 0 {
		params.MaxResults = DefaultMaxResults
	}
	if params.Persist && t.repo == nil {
		return nil, JobSearchResult{}, fmt.Errorf("persist requested but no listing storage is configured")
	}

	t.logger.Info("job_search request",
		"keywords", params.Keywords,
		"location", params.Location,
		"max_results", params.MaxResults,
		"persist", params.Persist,
	)

	res, err := t.searcher.Search(ctx, domain.Query{
		Keywords:        params.Keywords,
		Location:        params.Location,
		MaxTotalResults: params.MaxResults,
	})
	if err != nil {
		return nil, JobSearchResult{}, fmt.Errorf("search failed: %w", err)
	}

	out := JobSearchResult{
		Listings:  Views(res.Listings),
		Sources:   sourceViews(res),
		FetchedAt: res.FetchedAt.UTC().Format(time.RFC3339),
	}

	if params.Persist && len(res.Listings) > 0 {
		if err := t.repo.UpsertListings(ctx, res.Listings); err != nil {
			t.logger.Error("job_search: persist failed", "err", err, "listings", len(res.Listings))
			return nil, JobSearchResult{}, fmt.Errorf("persist listings: %w", err)
		}
		out.Persisted = len(res.Listings)
	}

	return textResult(formatSearch(out)), out, nil
}

// Views converts listings to their wire shape
func Views(listings []domain.NormalizedListing) []ListingView {
	out := make([]ListingView, 0, len(listings))
	for _, l := range listings {
		v := ListingView{
			ID:             job.ListingID(l).String(),
			Title:          l.Title,
			Company:        l.Company,
			Location:       l.Location,
			JobType:        string(l.JobType),
			RemoteOption:   string(l.RemoteOption),
			SalaryMin:      l.SalaryMin,
			SalaryMax:      l.SalaryMax,
			Currency:       l.Currency,
			TechStack:      l.TechStack,
			Source:         l.Source,
			ApplicationURL: l.ApplicationURL,
			Description:    truncate(l.Description, 500),
		}
		if !l.PostedAt.IsZero() {
			v.PostedAt = l.PostedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, v)
	}
	return out
}

func sourceViews(res domain.SearchResult) []SourceView {
	sums := res.Summaries()
	out := make([]SourceView, 0, len(sums))
	for _, s := range sums {
		out = append(out, SourceView(s))
	}
	return out
}

func formatSearch(r JobSearchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[job_search] %d listing(s)", len(r.Listings))
	if r.Persisted > 0 {
		fmt.Fprintf(&sb, ", %d persisted", r.Persisted)
	}
	sb.WriteString("\n")
	for _, l := range r.Listings {
		fmt.Fprintf(&sb, "\n- %s at %s", l.Title, l.Company)
		if l.Location != "" {
			fmt.Fprintf(&sb, " (%s)", l.Location)
		}
		fmt.Fprintf(&sb, " [%s] %s", l.Source, l.ApplicationURL)
	}
	for _, s := range r.Sources {
		if s.Error != "" {
			fmt.Fprintf(&sb, "\n! %s: %s", s.Source, s.Error)
		}
	}
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
