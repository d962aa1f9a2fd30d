package weworkremotely

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/honeycarbs/jobscout/internal/domain"
	jobdomain "github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/internal/domain/job/providers/base"
	"github.com/honeycarbs/jobscout/pkg/fetch"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

// Name is the source identifier
const Name = "weworkremotely"

// DefaultFeeds are the category feeds read when none are configured
var DefaultFeeds = []string{
	"https://weworkremotely.com/categories/remote-programming-jobs.rss",
	"https://weworkremotely.com/categories/remote-devops-sysadmin-jobs.rss",
}

// Config defines We Work Remotely settings
type Config struct {
	Feeds []string
}

// Provider implements job.Provider over the We Work Remotely RSS feeds. Each
// feed is one page; keywords and region filter client side.
type Provider struct {
	feeds   []string
	fetcher *fetch.Client
	logger  *logging.Logger
}

// NewProvider builds a We Work Remotely provider
func NewProvider(cfg Config, fetcher *fetch.Client, logger *logging.Logger) (*Provider, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("weworkremotely provider: fetch client is required")
	}
	feeds := cfg.Feeds
	if len(feeds) == 0 {
		feeds = DefaultFeeds
	}
	return &Provider{feeds: feeds, fetcher: fetcher, logger: logger}, nil
}

// Name returns provider identifier
func (p *Provider) Name() string {
	return Name
}

// Search reads each category feed in turn
func (p *Provider) Search(ctx context.Context, keywords, location string, maxResults int) ([]domain.NormalizedListing, error) {
	terms := strings.Fields(strings.ToLower(keywords))
	loc := strings.ToLower(strings.TrimSpace(location))
	collector := base.Collector{Source: Name, Logger: p.logger, MaxPages: len(p.feeds)}

	return collector.Collect(ctx, maxResults, func(ctx context.Context, n int) (base.Page, error) {
		resp, err := p.fetcher.Get(ctx, p.feeds[n], http.Header{
			"Accept": []string{"application/rss+xml, application/xml;q=0.9"},
		})
		if err != nil {
			return base.Page{}, base.CheckResponse(resp, err, nil)
		}

		last := n+1 >= len(p.feeds)
		feed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
		if err != nil {
			return base.Page{
				Done:      last,
				Malformed: fmt.Errorf("weworkremotely: parse %s: %w", p.feeds[n], err),
			}, nil
		}

		raw := make([]domain.RawListing, 0, len(feed.Items))
		for _, item := range feed.Items {
			r := toRaw(item)
			if !matches(r, terms, loc) {
				continue
			}
			raw = append(raw, r)
		}
		return base.Page{
			Raw:      raw,
			Done:     last,
			Filtered: len(feed.Items) > 0,
		}, nil
	})
}

// toRaw splits the "Company: Title" item title used by the feed
func toRaw(item *gofeed.Item) domain.RawListing {
	company, title, ok := strings.Cut(item.Title, ":")
	if !ok {
		company, title = "", item.Title
	}

	raw := domain.RawListing{
		Title:       strings.TrimSpace(title),
		Company:     strings.TrimSpace(company),
		Description: base.StripHTML(item.Description),
		URL:         item.Link,
		ExternalID:  item.GUID,
		Source:      Name,
		RemoteHint:  "remote",
		Tags:        item.Categories,
	}
	if region := item.Custom["region"]; region != "" {
		raw.Location = region
	}
	if t := item.Custom["type"]; t != "" {
		raw.JobTypeHint = t
	}
	if item.PublishedParsed != nil {
		raw.PostedAt = item.PublishedParsed.UTC()
	}
	return raw
}

func matches(r domain.RawListing, terms []string, loc string) bool {
	if loc != "" && !strings.Contains(loc, "remote") {
		region := strings.ToLower(r.Location)
		if region != "" && !strings.Contains(region, "anywhere") && !strings.Contains(region, loc) {
			return false
		}
	}
	hay := strings.ToLower(r.Title + " " + r.Company + " " + strings.Join(r.Tags, " ") + " " + r.Description)
	for _, t := range terms {
		if !strings.Contains(hay, t) {
			return false
		}
	}
	return true
}

var _ jobdomain.Provider = (*Provider)(nil)
