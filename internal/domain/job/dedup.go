package job

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/honeycarbs/jobscout/internal/domain"
)

// canonicalTokens folds common spelling variants of corporate suffixes
var canonicalTokens = map[string]string{
	"&":            "and",
	"inc":          "inc",
	"incorporated": "inc",
	"corp":         "corp",
	"corporation":  "corp",
	"co":           "co",
	"company":      "co",
	"ltd":          "ltd",
	"limited":      "ltd",
	"llc":          "llc",
	"gmbh":         "gmbh",
}

var punctReplacer = strings.NewReplacer(
	"&", " & ",
	"–", "-",
	"—", "-",
	"‐", "-",
	"’", "'",
	"‘", "'",
)

// DedupKey derives the identity used to collapse duplicate listings
func DedupKey(l domain.NormalizedListing) string {
	return NormalizeKeyPart(l.Title) + "|" + NormalizeKeyPart(l.Company) + "|" + NormalizeKeyPart(l.Location)
}

// NormalizeKeyPart lower-cases, folds Unicode compatibility forms, strips
// punctuation around tokens, canonicalises corporate suffixes and collapses
// whitespace.
func NormalizeKeyPart(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	s = punctReplacer.Replace(s)

	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?()[]{}\"'")
		if f == "" || f == "-" {
			continue
		}
		if c, ok := canonicalTokens[f]; ok {
			f = c
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// Dedup keeps the first listing seen for every dedup key, preserving input order
func Dedup(listings []domain.NormalizedListing) []domain.NormalizedListing {
	seen := make(map[string]struct{}, len(listings))
	out := make([]domain.NormalizedListing, 0, len(listings))
	for _, l := range listings {
		k := DedupKey(l)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, l)
	}
	return out
}
