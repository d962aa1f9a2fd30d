package domain

import (
	"time"

	"github.com/google/uuid"
)

// ListingID identifies a stored listing; derived from the dedup key
type ListingID = uuid.UUID

// JobType is the employment arrangement of a listing
type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeTemporary  JobType = "temporary"
	JobTypeUnknown    JobType = "unknown"
)

// RemoteOption describes where the work happens
type RemoteOption string

const (
	RemoteFull    RemoteOption = "remote"
	RemoteHybrid  RemoteOption = "hybrid"
	RemoteOnsite  RemoteOption = "onsite"
	RemoteUnknown RemoteOption = "unknown"
)

// Query is one search request. Immutable for the duration of a call.
type Query struct {
	Keywords        string
	Location        string
	MaxTotalResults int
}

// RawListing is the source specific shape an adapter parses before
// normalization. It never leaves the adapter.
type RawListing struct {
	Title       string
	Company     string
	Location    string
	Description string
	URL         string
	ExternalID  string
	Source      string

	SalaryText string
	SalaryMin  float64
	SalaryMax  float64
	Currency   string

	JobTypeHint string
	RemoteHint  string
	Tags        []string
	PostedAt    time.Time
}

// NormalizedListing is the canonical job posting record
type NormalizedListing struct {
	Title          string       `json:"title"`
	Company        string       `json:"company"`
	Location       string       `json:"location"`
	Description    string       `json:"description,omitempty"`
	ApplicationURL string       `json:"application_url,omitempty"`
	JobType        JobType      `json:"job_type"`
	RemoteOption   RemoteOption `json:"remote_option"`
	SalaryMin      float64      `json:"salary_min,omitempty"`
	SalaryMax      float64      `json:"salary_max,omitempty"`
	Currency       string       `json:"currency,omitempty"`
	Source         string       `json:"source"`
	TechStack      []string     `json:"tech_stack,omitempty"`

	ExternalID string    `json:"external_id,omitempty"`
	PostedAt   time.Time `json:"posted_at,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// AdapterResult is one source's contribution to a search. Err is advisory:
// Listings are merged even when Err is set (partial results).
type AdapterResult struct {
	Source   string
	Listings []NormalizedListing
	Err      error
	Duration time.Duration
}

// SearchResult is the merged, deduplicated and truncated output of a search
type SearchResult struct {
	Listings  []NormalizedListing
	Sources   []AdapterResult
	FetchedAt time.Time
}

// SourceSummary is the response-friendly per-source diagnostic
type SourceSummary struct {
	Source     string `json:"source"`
	Count      int    `json:"count"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Summaries renders the per-source diagnostics
func (r SearchResult) Summaries() []SourceSummary {
	out := make([]SourceSummary, 0, len(r.Sources))
	for _, s := range r.Sources {
		sum := SourceSummary{
			Source:     s.Source,
			Count:      len(s.Listings),
			DurationMS: s.Duration.Milliseconds(),
		}
		if s.Err != nil {
			sum.Error = s.Err.Error()
		}
		out = append(out, sum)
	}
	return out
}
