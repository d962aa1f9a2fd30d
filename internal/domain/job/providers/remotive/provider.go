package remotive

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/honeycarbs/jobscout/internal/domain"
	jobdomain "github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/internal/domain/job/providers/base"
	"github.com/honeycarbs/jobscout/pkg/fetch"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

const (
	// Name is the source identifier
	Name = "remotive"

	defaultBaseURL = "https://remotive.com"
	publishedFmt   = "2006-01-02T15:04:05"
)

// Config defines Remotive settings
type Config struct {
	BaseURL string
}

// Provider implements job.Provider on the Remotive remote jobs API. Every
// posting is remote; location narrows by the candidate region.
type Provider struct {
	cfg     Config
	fetcher *fetch.Client
	logger  *logging.Logger
}

type jobsResponse struct {
	Jobs []remoteJob `json:"jobs"`
}

type remoteJob struct {
	ID                int      `json:"id"`
	URL               string   `json:"url"`
	Title             string   `json:"title"`
	CompanyName       string   `json:"company_name"`
	Category          string   `json:"category"`
	Tags              []string `json:"tags"`
	JobType           string   `json:"job_type"`
	PublicationDate   string   `json:"publication_date"`
	CandidateLocation string   `json:"candidate_required_location"`
	Salary            string   `json:"salary"`
	Description       string   `json:"description"`
}

// NewProvider builds a Remotive provider
func NewProvider(cfg Config, fetcher *fetch.Client, logger *logging.Logger) (*Provider, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("remotive provider: fetch client is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &Provider{cfg: cfg, fetcher: fetcher, logger: logger}, nil
}

// Name returns provider identifier
func (p *Provider) Name() string {
	return Name
}

// Search issues a single request; Remotive does not paginate
func (p *Provider) Search(ctx context.Context, keywords, location string, maxResults int) ([]domain.NormalizedListing, error) {
	collector := base.Collector{Source: Name, Logger: p.logger, MaxPages: 1}

	return collector.Collect(ctx, maxResults, func(ctx context.Context, _ int) (base.Page, error) {
		v := url.Values{}
		if keywords != "" {
			v.Set("search", keywords)
		}
		// over-fetch so the location filter has something to work with
		v.Set("limit", strconv.Itoa(maxResults*2))

		var payload jobsResponse
		if err := p.fetcher.GetJSON(ctx, p.cfg.BaseURL+"/api/remote-jobs?"+v.Encode(), nil, &payload); err != nil {
			return base.Page{}, base.CheckResponse(nil, err, nil)
		}

		raw := make([]domain.RawListing, 0, len(payload.Jobs))
		for _, j := range payload.Jobs {
			if !regionMatches(j.CandidateLocation, location) {
				continue
			}
			raw = append(raw, toRaw(j))
		}
		return base.Page{Raw: raw, Done: true}, nil
	})
}

func toRaw(j remoteJob) domain.RawListing {
	raw := domain.RawListing{
		Title:       j.Title,
		Company:     j.CompanyName,
		Location:    j.CandidateLocation,
		Description: base.StripHTML(j.Description),
		URL:         j.URL,
		ExternalID:  strconv.Itoa(j.ID),
		Source:      Name,
		SalaryText:  j.Salary,
		JobTypeHint: j.JobType,
		RemoteHint:  "remote",
		Tags:        append([]string{j.Category}, j.Tags...),
	}
	if ts, err := time.Parse(publishedFmt, j.PublicationDate); err == nil {
		raw.PostedAt = ts.UTC()
	}
	return raw
}

// regionMatches keeps worldwide postings for any location
func regionMatches(region, location string) bool {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" || strings.Contains(loc, "remote") {
		return true
	}
	r := strings.ToLower(region)
	if r == "" || strings.Contains(r, "worldwide") || strings.Contains(r, "anywhere") {
		return true
	}
	return strings.Contains(r, loc) || strings.Contains(loc, r)
}

var _ jobdomain.Provider = (*Provider)(nil)
