package job

import (
	"context"

	"github.com/honeycarbs/jobscout/internal/domain"
)

// Provider represents an external job source (LinkedIn, Adzuna, an RSS feed, ...)
type Provider interface {
	// e.g. "linkedin" or "remotive"
	Name() string

	// Search returns at most maxResults normalized listings. A non-nil error is
	// advisory when listings are also returned (partial results).
	Search(ctx context.Context, keywords, location string, maxResults int) ([]domain.NormalizedListing, error)
}
