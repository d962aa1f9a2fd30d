package job

import (
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/honeycarbs/jobscout/internal/domain"
)

// MinFieldLength is the shortest acceptable title or company, in runes
const MinFieldLength = 2

// Normalize converts a raw record into the canonical shape. ok is false when
// the record has no usable title or company; such records must be dropped.
func Normalize(raw domain.RawListing, fetchedAt time.Time) (domain.NormalizedListing, bool) {
	title := collapseSpace(raw.Title)
	company := collapseSpace(raw.Company)
	if !validField(title) || !validField(company) {
		return domain.NormalizedListing{}, false
	}

	location := collapseSpace(raw.Location)
	description := strings.TrimSpace(raw.Description)

	out := domain.NormalizedListing{
		Title:          title,
		Company:        company,
		Location:       location,
		Description:    description,
		ApplicationURL: strings.TrimSpace(raw.URL),
		Source:         strings.ToLower(strings.TrimSpace(raw.Source)),
		ExternalID:     strings.TrimSpace(raw.ExternalID),
		PostedAt:       raw.PostedAt,
		FetchedAt:      fetchedAt,
		JobType:        inferJobType(raw.JobTypeHint, title, description),
		RemoteOption:   inferRemote(raw.RemoteHint, location, title),
		TechStack:      ExtractTechStack(title, description, raw.Tags),
	}

	out.SalaryMin, out.SalaryMax, out.Currency = raw.SalaryMin, raw.SalaryMax, strings.ToUpper(strings.TrimSpace(raw.Currency))
	if out.SalaryMin <= 0 && out.SalaryMax <= 0 && raw.SalaryText != "" {
		if s, ok := ParseSalary(raw.SalaryText); ok {
			out.SalaryMin, out.SalaryMax = s.Min, s.Max
			if out.Currency == "" {
				out.Currency = s.Currency
			}
		}
	}
	if out.SalaryMin > 0 && out.SalaryMax <= 0 {
		out.SalaryMax = out.SalaryMin
	}
	if out.SalaryMax > 0 && out.SalaryMin <= 0 {
		out.SalaryMin = out.SalaryMax
	}
	if out.SalaryMin > out.SalaryMax {
		out.SalaryMin, out.SalaryMax = out.SalaryMax, out.SalaryMin
	}

	return out, true
}

// Valid reports whether a listing satisfies the title/company invariant
func Valid(l domain.NormalizedListing) bool {
	return validField(l.Title) && validField(l.Company) &&
		l.Title == strings.TrimSpace(l.Title) && l.Company == strings.TrimSpace(l.Company)
}

func validField(s string) bool {
	return utf8.RuneCountInString(s) >= MinFieldLength
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// jobTypeHints are matched against whole words in priority order; a
// two-word phrase matches adjacent words, whatever separated them
var jobTypeHints = []struct {
	phrase []string
	kind   domain.JobType
}{
	{[]string{"intern"}, domain.JobTypeInternship},
	{[]string{"interns"}, domain.JobTypeInternship},
	{[]string{"internship"}, domain.JobTypeInternship},
	{[]string{"internships"}, domain.JobTypeInternship},
	{[]string{"part", "time"}, domain.JobTypePartTime},
	{[]string{"parttime"}, domain.JobTypePartTime},
	{[]string{"contract"}, domain.JobTypeContract},
	{[]string{"contractor"}, domain.JobTypeContract},
	{[]string{"freelance"}, domain.JobTypeContract},
	{[]string{"freelancer"}, domain.JobTypeContract},
	{[]string{"temporary"}, domain.JobTypeTemporary},
	{[]string{"temp"}, domain.JobTypeTemporary},
	{[]string{"full", "time"}, domain.JobTypeFullTime},
	{[]string{"fulltime"}, domain.JobTypeFullTime},
	{[]string{"permanent"}, domain.JobTypeFullTime},
}

func inferJobType(hint, title, description string) domain.JobType {
	if t := matchJobType(hint); t != domain.JobTypeUnknown {
		return t
	}
	if t := matchJobType(title); t != domain.JobTypeUnknown {
		return t
	}
	// descriptions mention "full-time" in benefits boilerplate too often to
	// trust anything but the leading paragraph
	lead := description
	if len(lead) > 300 {
		lead = lead[:300]
	}
	return matchJobType(lead)
}

func matchJobType(s string) domain.JobType {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return domain.JobTypeUnknown
	}
	for _, h := range jobTypeHints {
		if containsPhrase(words, h.phrase) {
			return h.kind
		}
	}
	return domain.JobTypeUnknown
}

func containsPhrase(words, phrase []string) bool {
	for i := 0; i+len(phrase) <= len(words); i++ {
		if slices.Equal(words[i:i+len(phrase)], phrase) {
			return true
		}
	}
	return false
}

func inferRemote(hint, location, title string) domain.RemoteOption {
	for _, s := range []string{hint, location, title} {
		s = strings.ToLower(s)
		switch {
		case s == "":
			continue
		case strings.Contains(s, "hybrid"):
			return domain.RemoteHybrid
		case strings.Contains(s, "remote"), strings.Contains(s, "anywhere"),
			strings.Contains(s, "work from home"), strings.Contains(s, "wfh"):
			return domain.RemoteFull
		case strings.Contains(s, "on-site"), strings.Contains(s, "onsite"),
			strings.Contains(s, "in-office"), strings.Contains(s, "in office"):
			return domain.RemoteOnsite
		case s == "true":
			return domain.RemoteFull
		}
	}
	return domain.RemoteUnknown
}
