package job

import (
	"context"

	"github.com/google/uuid"

	"github.com/honeycarbs/jobscout/internal/domain"
)

// Repository persists search output. It is a collaborator of the caller;
// the search service itself never writes.
type Repository interface {
	// UpsertListings creates or updates listings keyed by their dedup key
	UpsertListings(ctx context.Context, listings []domain.NormalizedListing) error
	// FindByIDs loads listings previously stored under the given IDs
	FindByIDs(ctx context.Context, ids []domain.ListingID) ([]domain.NormalizedListing, error)
}

// ListingID is the stable identity of a listing across searches: a name
// based UUID of its dedup key, so re-fetching a posting updates it in place.
func ListingID(l domain.NormalizedListing) domain.ListingID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("jobscout:"+DedupKey(l)))
}
