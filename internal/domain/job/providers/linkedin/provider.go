package linkedin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/honeycarbs/jobscout/internal/domain"
	jobdomain "github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/internal/domain/job/providers/base"
	"github.com/honeycarbs/jobscout/pkg/fetch"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

const (
	// Name is the source identifier
	Name = "linkedin"

	// PageSize is the offset step of the guest search endpoint
	PageSize = 25

	defaultBaseURL = "https://www.linkedin.com"
	searchPath     = "/jobs-guest/jobs/api/seeMoreJobPostings/search"
	urnPrefix      = "urn:li:jobPosting:"
)

// BlockMarkers identify the login wall and challenge pages
var BlockMarkers = []string{
	"authwall",
	"checkpoint/challenge",
	"captcha",
	"sign in to view more jobs",
	"unusual activity",
}

// Config defines LinkedIn settings
type Config struct {
	BaseURL  string
	MaxPages int
}

// Provider implements job.Provider by scraping LinkedIn's public guest
// search fragments. It must be paced by a conservative limiter.
type Provider struct {
	cfg     Config
	fetcher *fetch.Client
	logger  *logging.Logger
}

// NewProvider builds a LinkedIn provider
func NewProvider(cfg Config, fetcher *fetch.Client, logger *logging.Logger) (*Provider, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("linkedin provider: fetch client is required")
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

// Search pages the guest endpoint by offsets of PageSize
func (p *Provider) Search(ctx context.Context, keywords, location string, maxResults int) ([]domain.NormalizedListing, error) {
	collector := base.Collector{Source: Name, Logger: p.logger, MaxPages: p.cfg.MaxPages}

	return collector.Collect(ctx, maxResults, func(ctx context.Context, n int) (base.Page, error) {
		resp, err := p.fetcher.Do(ctx, fetch.Request{
			Method: http.MethodGet,
			URL:    p.searchURL(keywords, location, n*PageSize),
			Header: http.Header{
				"Accept":          []string{"text/html"},
				"Accept-Language": []string{"en-US,en;q=0.9"},
			},
			Accept: base.RejectMarkers(BlockMarkers),
		})
		if err := base.CheckResponse(resp, err, BlockMarkers); err != nil {
			return base.Page{}, err
		}

		raw, err := ParseCards(resp.Body)
		if err != nil {
			return base.Page{}, fmt.Errorf("linkedin: parse page %d: %w", n, err)
		}
		return base.Page{Raw: raw, Done: len(raw) < PageSize}, nil
	})
}

func (p *Provider) searchURL(keywords, location string, start int) string {
	v := url.Values{}
	if keywords != "" {
		v.Set("keywords", keywords)
	}
	if location != "" {
		v.Set("location", location)
	}
	v.Set("start", strconv.Itoa(start))
	return p.cfg.BaseURL + searchPath + "?" + v.Encode()
}

// ParseCards extracts the job cards of a guest search fragment. Cards
// missing a title or company come back with empty fields and are dropped by
// normalization.
func ParseCards(body []byte) ([]domain.RawListing, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	doc, err := base.ParseHTML(body)
	if err != nil {
		return nil, err
	}

	cards := base.FindAll(doc, func(n *html.Node) bool {
		return base.HasClass(n, "base-search-card") || base.HasClass(n, "job-search-card")
	})

	out := make([]domain.RawListing, 0, len(cards))
	for _, card := range cards {
		out = append(out, parseCard(card))
	}
	return out, nil
}

func parseCard(card *html.Node) domain.RawListing {
	raw := domain.RawListing{
		Title:    base.Text(base.FindFirst(card, base.ByClass("base-search-card__title"))),
		Company:  base.Text(base.FindFirst(card, base.ByClass("base-search-card__subtitle"))),
		Location: base.Text(base.FindFirst(card, base.ByClass("job-search-card__location"))),
		Source:   Name,
	}

	if link := base.FindFirst(card, base.ByClass("base-card__full-link")); link != nil {
		if href, ok := base.Attr(link, "href"); ok {
			raw.URL = stripTracking(href)
		}
	}
	if urn, ok := base.Attr(card, "data-entity-urn"); ok {
		raw.ExternalID = strings.TrimPrefix(urn, urnPrefix)
	}
	if salary := base.FindFirst(card, base.ByClass("job-search-card__salary-info")); salary != nil {
		raw.SalaryText = base.Text(salary)
	}
	if t := base.FindFirst(card, base.ByTag("time")); t != nil {
		if dt, ok := base.Attr(t, "datetime"); ok {
			if ts, err := time.Parse(time.DateOnly, dt); err == nil {
				raw.PostedAt = ts
			}
		}
	}
	return raw
}

func stripTracking(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

var _ jobdomain.Provider = (*Provider)(nil)
