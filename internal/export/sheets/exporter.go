// Package sheets renders listings as spreadsheet rows and writes them
// through a Google Sheets value writer.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/domain/job"
)

const defaultTab = "Listings"

// Header is the first row of an exported tab
var Header = []any{
	"ID", "Title", "Company", "Location", "Job type", "Remote", "Salary min", "Salary max",
	"Currency", "Tech stack", "Source", "URL", "Posted", "Fetched",
}

// ValueWriter is satisfied by *pkg/sheets.Client
type ValueWriter interface {
	AppendValues(ctx context.Context, spreadsheetID, range_ string, values [][]any) (int, error)
	UpdateValues(ctx context.Context, spreadsheetID, range_ string, values [][]any) (int, error)
	ClearValues(ctx context.Context, spreadsheetID, range_ string) error
}

// Target is the destination of an export
type Target struct {
	SpreadsheetID string
	Tab           string
	// Replace clears existing rows and rewrites the header; otherwise rows append
	Replace bool
}

// Result summarizes an export
type Result struct {
	SpreadsheetID string    `json:"spreadsheet_id"`
	Tab           string    `json:"tab"`
	Mode          string    `json:"mode"`
	WrittenRows   int       `json:"written_rows"`
	CompletedAt   time.Time `json:"completed_at"`
}

// Exporter writes listings to a spreadsheet
type Exporter struct {
	writer     ValueWriter
	defaultTab string
}

// NewExporter builds an exporter; tab is used when a Target names none
func NewExporter(writer ValueWriter, tab string) *Exporter {
	if tab == "" {
		tab = defaultTab
	}
	return &Exporter{writer: writer, defaultTab: tab}
}

// Export writes one row per listing
func (e *Exporter) Export(ctx context.Context, target Target, listings []domain.NormalizedListing) (Result, error) {
	if target.SpreadsheetID == "" {
		return Result{}, fmt.Errorf("sheets export: spreadsheet id is required")
	}
	tab := target.Tab
	if tab == "" {
		tab = e.defaultTab
	}

	res := Result{SpreadsheetID: target.SpreadsheetID, Tab: tab, Mode: "append"}
	rows := Rows(listings)

	if target.Replace {
		res.Mode = "replace"
		if err := e.writer.ClearValues(ctx, target.SpreadsheetID, quoteTab(tab)+"!A1:Z"); err != nil {
			return res, fmt.Errorf("sheets export: %w", err)
		}
		rows = append([][]any{Header}, rows...)
		n, err := e.writer.UpdateValues(ctx, target.SpreadsheetID, quoteTab(tab)+"!A1", rows)
		if err != nil {
			return res, fmt.Errorf("sheets export: %w", err)
		}
		res.WrittenRows = max(n-1, 0)
	} else if len(rows) > 0 {
		n, err := e.writer.AppendValues(ctx, target.SpreadsheetID, quoteTab(tab)+"!A1", rows)
		if err != nil {
			return res, fmt.Errorf("sheets export: %w", err)
		}
		res.WrittenRows = n
	}

	res.CompletedAt = time.Now().UTC()
	return res, nil
}

// Rows renders listings in Header column order
func Rows(listings []domain.NormalizedListing) [][]any {
	out := make([][]any, 0, len(listings))
	for _, l := range listings {
		out = append(out, []any{
			job.ListingID(l).String(),
			l.Title,
			l.Company,
			l.Location,
			string(l.JobType),
			string(l.RemoteOption),
			salaryCell(l.SalaryMin),
			salaryCell(l.SalaryMax),
			l.Currency,
			strings.Join(l.TechStack, ", "),
			l.Source,
			l.ApplicationURL,
			dateCell(l.PostedAt),
			dateCell(l.FetchedAt),
		})
	}
	return out
}

func salaryCell(v float64) any {
	if v <= 0 {
		return ""
	}
	return v
}

func dateCell(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// quoteTab quotes tab names that A1 notation would otherwise misread
func quoteTab(tab string) string {
	if strings.ContainsAny(tab, " '!") {
		return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
	}
	return tab
}
