package job

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/honeycarbs/jobscout/internal/domain"
)

func listing(title, company, location, source string) domain.NormalizedListing {
	return domain.NormalizedListing{Title: title, Company: company, Location: location, Source: source}
}

func TestNormalizeKeyPart(t *testing.T) {
	cases := map[string]string{
		"  Senior   Engineer ":    "senior engineer",
		"Acme, Inc.":              "acme inc",
		"Acme Incorporated":       "acme inc",
		"Smith & Sons Ltd":        "smith and sons ltd",
		"Smith and Sons Limited":  "smith and sons ltd",
		"Backend – Platform":      "backend platform",
		"Ｆｕｌｌｗｉｄｔｈ Corp":        "fullwidth corp",
		"Berlin (Remote)":         "berlin remote",
		"O’Reilly Media":          "o'reilly media",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeKeyPart(in), in)
	}
}

func TestDedup_KeepsFirstSeenInOrder(t *testing.T) {
	in := []domain.NormalizedListing{
		listing("Go Engineer", "Acme Inc", "Berlin", "adzuna"),
		listing("Data Analyst", "Initech", "Remote", "remotive"),
		listing("go engineer", "ACME, Inc.", "berlin", "linkedin"),
		listing("Go Engineer", "Acme Inc", "Munich", "indeed"),
	}

	out := Dedup(in)

	assert.Len(t, out, 3)
	assert.Equal(t, "adzuna", out[0].Source)
	assert.Equal(t, "remotive", out[1].Source)
	assert.Equal(t, "indeed", out[2].Source)
}

func TestDedup_Idempotent(t *testing.T) {
	in := []domain.NormalizedListing{
		listing("A title", "Company", "X", "a"),
		listing("A  title", "company", "x", "b"),
		listing("Other", "Company", "X", "c"),
	}

	once := Dedup(in)
	twice := Dedup(once)

	assert.Equal(t, once, twice)
	for i := range once {
		for j := i + 1; j < len(once); j++ {
			assert.NotEqual(t, DedupKey(once[i]), DedupKey(once[j]))
		}
	}
}

func TestDedup_Empty(t *testing.T) {
	assert.Empty(t, Dedup(nil))
}
