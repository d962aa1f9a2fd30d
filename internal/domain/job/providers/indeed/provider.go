package indeed

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/honeycarbs/jobscout/internal/domain"
	jobdomain "github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/internal/domain/job/providers/base"
	"github.com/honeycarbs/jobscout/pkg/logging"
	"github.com/honeycarbs/jobscout/pkg/render"
)

const (
	// Name is the source identifier
	Name = "indeed"

	// PageStep is the offset step of the search page
	PageStep = 10

	defaultBaseURL = "https://www.indeed.com"
)

// BlockMarkers identify Cloudflare and hCaptcha interstitials
var BlockMarkers = []string{
	"just a moment...",
	"cf-challenge",
	"challenge-platform",
	"hcaptcha",
	"additional verification required",
}

// Config defines Indeed settings
type Config struct {
	BaseURL  string
	MaxPages int
}

// Provider implements job.Provider on Indeed's JavaScript-rendered search
// pages, fetched through a Renderer.
type Provider struct {
	cfg      Config
	renderer render.Renderer
	logger   *logging.Logger
}

// NewProvider builds an Indeed provider
func NewProvider(cfg Config, renderer render.Renderer, logger *logging.Logger) (*Provider, error) {
	if renderer == nil {
		return nil, fmt.Errorf("indeed provider: renderer is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &Provider{cfg: cfg, renderer: renderer, logger: logger}, nil
}

// Name returns provider identifier
func (p *Provider) Name() string {
	return Name
}

// Search renders result pages by offsets of PageStep. Indeed repeats the last
// page past the end, so a page with no unseen job keys ends pagination.
func (p *Provider) Search(ctx context.Context, keywords, location string, maxResults int) ([]domain.NormalizedListing, error) {
	collector := base.Collector{Source: Name, Logger: p.logger, MaxPages: p.cfg.MaxPages}
	seen := make(map[string]struct{})

	return collector.Collect(ctx, maxResults, func(ctx context.Context, n int) (base.Page, error) {
		body, err := p.renderer.Render(ctx, p.searchURL(keywords, location, n*PageStep))
		if base.HasMarker(body, BlockMarkers) {
			return base.Page{}, fmt.Errorf("challenge page: %w", jobdomain.ErrSoftBlocked)
		}
		if err != nil {
			return base.Page{}, base.CheckResponse(nil, err, nil)
		}

		cards, err := p.ParseCards(body)
		if err != nil {
			return base.Page{}, fmt.Errorf("indeed: parse page %d: %w", n, err)
		}

		fresh := cards[:0]
		for _, c := range cards {
			if c.ExternalID != "" {
				if _, dup := seen[c.ExternalID]; dup {
					continue
				}
				seen[c.ExternalID] = struct{}{}
			}
			fresh = append(fresh, c)
		}
		return base.Page{Raw: fresh, Done: len(fresh) == 0}, nil
	})
}

func (p *Provider) searchURL(keywords, location string, start int) string {
	v := url.Values{}
	v.Set("q", keywords)
	if location != "" {
		v.Set("l", location)
	}
	if start > 0 {
		v.Set("start", strconv.Itoa(start))
	}
	return p.cfg.BaseURL + "/jobs?" + v.Encode()
}

// ParseCards extracts result cards from a rendered search page
func (p *Provider) ParseCards(body []byte) ([]domain.RawListing, error) {
	doc, err := base.ParseHTML(body)
	if err != nil {
		return nil, err
	}

	cards := base.FindAll(doc, base.ByClass("job_seen_beacon"))
	out := make([]domain.RawListing, 0, len(cards))
	for _, card := range cards {
		out = append(out, p.parseCard(card))
	}
	return out, nil
}

func (p *Provider) parseCard(card *html.Node) domain.RawListing {
	raw := domain.RawListing{
		Company:  base.Text(base.FindFirst(card, base.ByAttr("data-testid", "company-name"))),
		Location: base.Text(base.FindFirst(card, base.ByAttr("data-testid", "text-location"))),
		Source:   Name,
	}

	if h := base.FindFirst(card, base.ByClass("jobTitle")); h != nil {
		if span := base.FindFirst(h, func(n *html.Node) bool {
			_, ok := base.Attr(n, "title")
			return n.Data == "span" && ok
		}); span != nil {
			raw.Title, _ = base.Attr(span, "title")
		} else {
			raw.Title = base.Text(h)
		}
		if a := base.FindFirst(h, base.ByTag("a")); a != nil {
			if jk, ok := base.Attr(a, "data-jk"); ok {
				raw.ExternalID = jk
				raw.URL = p.cfg.BaseURL + "/viewjob?jk=" + url.QueryEscape(jk)
			}
		}
	}

	var attrs []string
	for _, n := range base.FindAll(card, base.ByAttr("data-testid", "attribute_snippet_testid")) {
		attrs = append(attrs, base.Text(n))
	}
	for _, a := range attrs {
		switch {
		case strings.ContainsAny(a, "$€£") || strings.Contains(strings.ToLower(a), "a year"):
			raw.SalaryText = a
		default:
			raw.JobTypeHint = strings.TrimSpace(raw.JobTypeHint + " " + a)
		}
	}

	if snippet := base.FindFirst(card, base.ByClass("job-snippet")); snippet != nil {
		raw.Description = base.Text(snippet)
	} else if snippet := base.FindFirst(card, base.ByAttr("data-testid", "jobsnippet_footer")); snippet != nil {
		raw.Description = base.Text(snippet)
	}
	return raw
}

var _ jobdomain.Provider = (*Provider)(nil)
