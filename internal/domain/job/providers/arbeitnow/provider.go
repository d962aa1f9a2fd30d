package arbeitnow

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
	Name = "arbeitnow"

	defaultBaseURL = "https://www.arbeitnow.com"
)

// Config defines Arbeitnow settings
type Config struct {
	BaseURL  string
	MaxPages int
}

// Provider implements job.Provider on the Arbeitnow job board API. The API
// has no search parameters, so keywords and location filter client side.
type Provider struct {
	cfg     Config
	fetcher *fetch.Client
	logger  *logging.Logger
}

type boardResponse struct {
	Data  []boardJob `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

type boardJob struct {
	Slug        string   `json:"slug"`
	CompanyName string   `json:"company_name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Remote      bool     `json:"remote"`
	URL         string   `json:"url"`
	Tags        []string `json:"tags"`
	JobTypes    []string `json:"job_types"`
	Location    string   `json:"location"`
	CreatedAt   int64    `json:"created_at"`
}

// NewProvider builds an Arbeitnow provider
func NewProvider(cfg Config, fetcher *fetch.Client, logger *logging.Logger) (*Provider, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("arbeitnow provider: fetch client is required")
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

// Search walks the board pages, keeping postings that match the query
func (p *Provider) Search(ctx context.Context, keywords, location string, maxResults int) ([]domain.NormalizedListing, error) {
	match := newMatcher(keywords, location)
	collector := base.Collector{Source: Name, Logger: p.logger, MaxPages: p.cfg.MaxPages}

	return collector.Collect(ctx, maxResults, func(ctx context.Context, n int) (base.Page, error) {
		var payload boardResponse
		if err := p.fetcher.GetJSON(ctx, p.pageURL(n+1), nil, &payload); err != nil {
			return base.Page{}, base.CheckResponse(nil, err, nil)
		}

		raw := make([]domain.RawListing, 0, len(payload.Data))
		for _, j := range payload.Data {
			if !match(j) {
				continue
			}
			raw = append(raw, toRaw(j))
		}

		return base.Page{
			Raw:      raw,
			Done:     payload.Links.Next == "" || len(payload.Data) == 0,
			Filtered: len(payload.Data) > 0,
		}, nil
	})
}

func (p *Provider) pageURL(page int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	return p.cfg.BaseURL + "/api/job-board-api?" + v.Encode()
}

func toRaw(j boardJob) domain.RawListing {
	raw := domain.RawListing{
		Title:       j.Title,
		Company:     j.CompanyName,
		Location:    j.Location,
		Description: base.StripHTML(j.Description),
		URL:         j.URL,
		ExternalID:  j.Slug,
		Source:      Name,
		Tags:        j.Tags,
		JobTypeHint: strings.Join(j.JobTypes, " "),
	}
	if j.Remote {
		raw.RemoteHint = "remote"
	}
	if j.CreatedAt > 0 {
		raw.PostedAt = time.Unix(j.CreatedAt, 0).UTC()
	}
	return raw
}

func newMatcher(keywords, location string) func(boardJob) bool {
	terms := strings.Fields(strings.ToLower(keywords))
	loc := strings.ToLower(strings.TrimSpace(location))

	return func(j boardJob) bool {
		if loc != "" {
			switch {
			case strings.Contains(strings.ToLower(j.Location), loc):
			case j.Remote && strings.Contains(loc, "remote"):
			default:
				return false
			}
		}
		if len(terms) == 0 {
			return true
		}
		hay := strings.ToLower(j.Title + " " + strings.Join(j.Tags, " ") + " " + j.Description)
		for _, t := range terms {
			if !strings.Contains(hay, t) {
				return false
			}
		}
		return true
	}
}

var _ jobdomain.Provider = (*Provider)(nil)
