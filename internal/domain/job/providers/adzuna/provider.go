package adzuna

import (
	"context"
	"fmt"
	"strings"

	"github.com/honeycarbs/jobscout/internal/domain"
	jobdomain "github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/internal/domain/job/providers/base"
	"github.com/honeycarbs/jobscout/pkg/adzuna"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

// Name is the source identifier
const Name = "adzuna"

// searchClient describes the subset of the Adzuna client used by the provider.
type searchClient interface {
	SearchJobs(ctx context.Context, query string, params adzuna.SearchParams) (adzuna.SearchPage, error)
	PageSize() int
}

// Provider implements job.Provider using Adzuna API
type Provider struct {
	client   searchClient
	currency string
	logger   *logging.Logger
}

// NewProvider builds an Adzuna provider; country picks the salary currency
func NewProvider(client searchClient, country string, logger *logging.Logger) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("adzuna provider: client is required")
	}
	return &Provider{
		client:   client,
		currency: currencyFor(country),
		logger:   logger,
	}, nil
}

// Name returns provider identifier
func (p *Provider) Name() string {
	return Name
}

// Search pages through Adzuna until maxResults listings are collected
func (p *Provider) Search(ctx context.Context, keywords, location string, maxResults int) ([]domain.NormalizedListing, error) {
	if p == nil || p.client == nil {
		return nil, fmt.Errorf("adzuna provider: client is nil")
	}

	collector := base.Collector{Source: Name, Logger: p.logger}
	return collector.Collect(ctx, maxResults, func(ctx context.Context, n int) (base.Page, error) {
		page, err := p.client.SearchJobs(ctx, keywords, adzuna.SearchParams{
			Location: location,
			Page:     n + 1,
		})
		if err != nil {
			return base.Page{}, base.CheckResponse(nil, err, nil)
		}

		raw := make([]domain.RawListing, 0, len(page.Jobs))
		for _, j := range page.Jobs {
			raw = append(raw, p.toRaw(j))
		}

		seen := (n + 1) * p.client.PageSize()
		return base.Page{Raw: raw, Done: len(page.Jobs) < p.client.PageSize() || seen >= page.Count}, nil
	})
}

func (p *Provider) toRaw(j adzuna.Job) domain.RawListing {
	raw := domain.RawListing{
		Title:       base.StripHTML(j.Title),
		Company:     j.CompanyName,
		Location:    j.Location,
		Description: base.StripHTML(j.Description),
		URL:         j.URL,
		ExternalID:  j.ID,
		Source:      Name,
		SalaryMin:   j.SalaryMin,
		SalaryMax:   j.SalaryMax,
		JobTypeHint: j.ContractTime,
		PostedAt:    j.PostedAt,
	}
	if strings.EqualFold(j.ContractType, "contract") {
		raw.JobTypeHint = "contract"
	}
	if raw.SalaryMin > 0 || raw.SalaryMax > 0 {
		raw.Currency = p.currency
	}
	if j.Category != "" {
		raw.Tags = []string{j.Category}
	}
	return raw
}

var currencies = map[string]string{
	"us": "USD",
	"gb": "GBP",
	"ca": "CAD",
	"au": "AUD",
	"nz": "NZD",
	"in": "INR",
	"sg": "SGD",
	"pl": "PLN",
	"ch": "CHF",
	"de": "EUR",
	"fr": "EUR",
	"nl": "EUR",
	"it": "EUR",
	"es": "EUR",
	"at": "EUR",
	"be": "EUR",
}

func currencyFor(country string) string {
	if c, ok := currencies[strings.ToLower(country)]; ok {
		return c
	}
	return currencies["us"]
}

var _ jobdomain.Provider = (*Provider)(nil)
