package base

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

// DefaultMaxPages bounds pagination when a source never reports the last page
const DefaultMaxPages = 10

// Page is one fetched page of raw records. Done marks the last page.
// Filtered keeps pagination going when Raw is empty only because the
// adapter discarded non-matching postings. Malformed marks a page that was
// fetched but could not be parsed; it is skipped and pagination goes on.
type Page struct {
	Raw       []domain.RawListing
	Done      bool
	Filtered  bool
	Malformed error
}

// PageFunc fetches page n, counting from zero
type PageFunc func(ctx context.Context, n int) (Page, error)

// Collector drives pagination for an adapter: it normalizes each page,
// stops at the budget and classifies failures.
type Collector struct {
	Source   string
	Logger   *logging.Logger
	MaxPages int
	Clock    func() time.Time
}

// Collect pages until maxResults valid listings are gathered or the source
// runs dry.
//
// Failure handling:
//   - a soft block returns what was gathered so far plus job.ErrSoftBlocked
//   - a failure before any page succeeded returns job.ErrSourceUnavailable
//   - a later transport failure ends pagination quietly with partial results
//   - malformed pages are skipped; if no page was readable the source is
//     job.ErrSourceUnavailable
//   - cancellation returns partial results plus the context error
func (c Collector) Collect(ctx context.Context, maxResults int, fetch PageFunc) ([]domain.NormalizedListing, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	logger := c.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With("source", c.Source)

	maxPages := c.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	clock := c.Clock
	if clock == nil {
		clock = time.Now
	}

	out := make([]domain.NormalizedListing, 0, maxResults)
	succeeded, dropped, skipped := 0, 0, 0
	var malformed error

	for n := 0; n < maxPages; n++ {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("%s: %w", c.Source, err)
		}

		page, err := fetch(ctx, n)
		if err != nil {
			switch {
			case errors.Is(err, job.ErrSoftBlocked):
				logger.Warn("soft block detected", "page", n, "listings", len(out))
				return out, fmt.Errorf("%s: page %d: %w", c.Source, n, err)
			case ctx.Err() != nil:
				return out, fmt.Errorf("%s: %w", c.Source, ctx.Err())
			case succeeded == 0:
				return nil, fmt.Errorf("%s: %w: %w", c.Source, job.ErrSourceUnavailable, err)
			default:
				logger.Warn("pagination stopped early", "page", n, "listings", len(out), "err", err)
				return out, nil
			}
		}
		if page.Malformed != nil {
			skipped++
			malformed = page.Malformed
			logger.Warn("malformed page skipped", "page", n, "err", page.Malformed)
			if page.Done {
				break
			}
			continue
		}
		succeeded++

		fetchedAt := clock().UTC()
		for _, raw := range page.Raw {
			if raw.Source == "" {
				raw.Source = c.Source
			}
			l, ok := job.Normalize(raw, fetchedAt)
			if !ok {
				dropped++
				continue
			}
			out = append(out, l)
			if len(out) == maxResults {
				logger.Debug("budget reached", "pages", succeeded, "dropped", dropped)
				return out, nil
			}
		}

		if page.Done || (len(page.Raw) == 0 && !page.Filtered) {
			break
		}
	}

	if succeeded == 0 && skipped > 0 {
		return nil, fmt.Errorf("%s: %w: %w", c.Source, job.ErrSourceUnavailable, malformed)
	}
	logger.Debug("source exhausted", "pages", succeeded, "skipped", skipped, "listings", len(out), "dropped", dropped)
	return out, nil
}
