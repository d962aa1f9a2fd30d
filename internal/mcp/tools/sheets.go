package tools

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/internal/export/sheets"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

// Exporter writes listings to a spreadsheet
type Exporter interface {
	Export(ctx context.Context, target sheets.Target, listings []domain.NormalizedListing) (sheets.Result, error)
}

// SheetTarget is the destination of sheets_export
type SheetTarget struct {
	SpreadsheetID string `json:"spreadsheet_id,omitempty" jsonschema:"Google Sheets document ID; defaults to the configured one"`
	Tab           string `json:"tab,omitempty" jsonschema:"Tab name"`
	Replace       bool   `json:"replace,omitempty" jsonschema:"Clear the tab and rewrite it with a header row"`
}

// SheetsExportParams defines the arguments for the sheets_export tool.
// Listings come from stored IDs when given, otherwise from a fresh search.
type SheetsExportParams struct {
	ListingIDs []string    `json:"listing_ids,omitempty" jsonschema:"Stored listing IDs to export"`
	Keywords   string      `json:"keywords,omitempty" jsonschema:"Search keywords when no IDs are given"`
	Location   string      `json:"location,omitempty" jsonschema:"Search location when no IDs are given"`
	MaxResults int         `json:"max_results,omitempty" jsonschema:"Search result cap (default 25)"`
	Sheet      SheetTarget `json:"sheet,omitempty" jsonschema:"Destination sheet"`
}

// SheetsExportResult describes the summary returned after export
type SheetsExportResult struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	Tab           string `json:"tab"`
	Mode          string `json:"mode" jsonschema:"append or replace"`
	Origin        string `json:"origin" jsonschema:"stored or search"`
	WrittenRows   int    `json:"written_rows"`
	CompletedAt   string `json:"completed_at"`
}

type sheetsExportTool struct {
	exporter      Exporter
	searcher      job.Searcher
	repo          job.Repository
	spreadsheetID string
	logger        *logging.Logger
}

// WithSheetsExport registers the sheets_export tool. spreadsheetID is the
// default destination.
func WithSheetsExport(exporter Exporter, searcher job.Searcher, repo job.Repository, spreadsheetID string) Option {
	return func(reg *registry) {
		t := sheetsExportTool{
			exporter:      exporter,
			searcher:      searcher,
			repo:          repo,
			spreadsheetID: spreadsheetID,
			logger:        reg.logger.Named("sheets_export"),
		}
		addTool(reg, &sdkmcp.Tool{
			Name:        "sheets_export",
			Description: "Export stored listings, or the results of a new search, to Google Sheets",
		}, t.handle)
	}
}

func (t sheetsExportTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params SheetsExportParams) (*sdkmcp.CallToolResult, SheetsExportResult, error) {
	if t.exporter == nil {
		return nil, SheetsExportResult{}, fmt.Errorf("google sheets is not configured")
	}

	target := sheets.Target{
		SpreadsheetID: params.Sheet.SpreadsheetID,
		Tab:           params.Sheet.Tab,
		Replace:       params.Sheet.Replace,
	}
	if target.SpreadsheetID == "" {
		target.SpreadsheetID = t.spreadsheetID
	}

	listings, origin, err := t.collect(ctx, params)
	if err != nil {
		return nil, SheetsExportResult{}, err
	}

	t.logger.Info("sheets_export request", "origin", origin, "listings", len(listings), "replace", target.Replace)

	res, err := t.exporter.Export(ctx, target, listings)
	if err != nil {
		t.logger.Error("sheets_export failed", "err", err)
		return nil, SheetsExportResult{}, err
	}

	out := SheetsExportResult{
		SpreadsheetID: res.SpreadsheetID,
		Tab:           res.Tab,
		Mode:          res.Mode,
		Origin:        origin,
		WrittenRows:   res.WrittenRows,
		CompletedAt:   res.CompletedAt.Format(time.RFC3339),
	}
	msg := fmt.Sprintf("[sheets_export] wrote %d row(s) to %s/%s (%s, %s)", out.WrittenRows, out.SpreadsheetID, out.Tab, out.Mode, out.Origin)
	return textResult(msg), out, nil
}

func (t sheetsExportTool) collect(ctx context.Context, params SheetsExportParams) ([]domain.NormalizedListing, string, error) {
	if len(params.ListingIDs) > 0 {
		if t.repo == nil {
			return nil, "", fmt.Errorf("listing_ids given but no listing storage is configured")
		}
		ids, err := parseIDs(params.ListingIDs)
		if err != nil {
			return nil, "", err
		}
		listings, err := t.repo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, "", fmt.Errorf("load listings: %w", err)
		}
		return listings, "stored", nil
	}

	if t.searcher == nil {
		return nil, "", fmt.Errorf("search is not available")
	}
	maxResults := params.MaxResults
	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}
	res, err := t.searcher.Search(ctx, domain.Query{
		Keywords:        params.Keywords,
		Location:        params.Location,
		MaxTotalResults: maxResults,
	})
	if err != nil {
		return nil, "", fmt.Errorf("search failed: %w", err)
	}
	return res.Listings, "search", nil
}
