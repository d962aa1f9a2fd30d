package tools

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

// ListingGetParams defines the arguments for the listing_get tool
type ListingGetParams struct {
	IDs []string `json:"ids" jsonschema:"Listing identifiers returned by job_search"`
}

// ListingGetResult is the structured response of listing_get
type ListingGetResult struct {
	Listings []ListingView `json:"listings"`
	Missing  int           `json:"missing" jsonschema:"Requested IDs that are not stored"`
}

type listingGetTool struct {
	repo   job.Repository
	logger *logging.Logger
}

// WithListingGet registers listing_get, which rehydrates persisted listings
func WithListingGet(repo job.Repository) Option {
	return func(reg *registry) {
		if repo == nil {
			return
		}
		t := listingGetTool{repo: repo, logger: reg.logger.Named("listing_get")}
		addTool(reg, &sdkmcp.Tool{
			Name:        "listing_get",
			Description: "Load previously persisted listings by ID",
		}, t.handle)
	}
}

func (t listingGetTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params ListingGetParams) (*sdkmcp.CallToolResult, ListingGetResult, error) {
	if len(params.IDs) == 0 {
		return textResult("[listing_get] no ids provided"), ListingGetResult{Listings: []ListingView{}}, nil
	}

	ids, err := parseIDs(params.IDs)
	if err != nil {
		return nil, ListingGetResult{}, err
	}

	listings, err := t.repo.FindByIDs(ctx, ids)
	if err != nil {
		t.logger.Error("listing_get failed", "err", err, "ids", len(ids))
		return nil, ListingGetResult{}, fmt.Errorf("load listings: %w", err)
	}

	out := ListingGetResult{Listings: Views(listings), Missing: len(ids) - len(listings)}
	msg := fmt.Sprintf("[listing_get] found %d of %d listing(s)", len(listings), len(ids))
	return textResult(msg), out, nil
}

func parseIDs(raw []string) ([]domain.ListingID, error) {
	ids := make([]domain.ListingID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid listing id %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
