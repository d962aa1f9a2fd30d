package job

import (
	"regexp"
	"strconv"
	"strings"
)

// Salary is a parsed salary range
type Salary struct {
	Min      float64
	Max      float64
	Currency string
}

var (
	salaryNumberRe = regexp.MustCompile(`(\d{1,3}(?:[,.\x{00a0} ]\d{3})+|\d+(?:\.\d+)?)\s*([kKmM])?\b`)
	thousandsSepRe = regexp.MustCompile(`^\d{1,3}(?:[,.\x{00a0} ]\d{3})+$`)

	currencyCodes = []string{"USD", "EUR", "GBP", "CAD", "AUD", "CHF", "INR", "SEK", "NOK", "DKK", "PLN", "JPY", "NZD", "SGD"}

	currencyPrefixes = []struct {
		prefix string
		code   string
	}{
		{"ca$", "CAD"},
		{"c$", "CAD"},
		{"au$", "AUD"},
		{"a$", "AUD"},
		{"nz$", "NZD"},
		{"s$", "SGD"},
		{"€", "EUR"},
		{"£", "GBP"},
		{"₹", "INR"},
		{"¥", "JPY"},
		{"zł", "PLN"},
		{"$", "USD"},
	}
)

// ParseSalary extracts a range from free text such as "$80k - $120k",
// "€50.000–60.000 a year" or "£40,000". ok is false when no number is found.
func ParseSalary(text string) (Salary, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Salary{}, false
	}

	matches := salaryNumberRe.FindAllStringSubmatch(text, -1)
	values := make([]float64, 0, 2)
	suffixes := make([]string, 0, 2)
	for _, m := range matches {
		v, ok := parseAmount(m[1])
		if !ok || v <= 0 {
			continue
		}
		values = append(values, v)
		suffixes = append(suffixes, strings.ToLower(m[2]))
		if len(values) == 2 {
			break
		}
	}
	if len(values) == 0 {
		return Salary{}, false
	}

	// "80-120k": the trailing multiplier applies to a bare leading number
	if len(values) == 2 && suffixes[0] == "" && suffixes[1] != "" && values[0] < 1000 {
		suffixes[0] = suffixes[1]
	}
	for i := range values {
		values[i] *= multiplier(suffixes[i])
	}

	s := Salary{Min: values[0], Max: values[0], Currency: detectCurrency(text)}
	if len(values) == 2 {
		s.Max = values[1]
	}
	if s.Min > s.Max {
		s.Min, s.Max = s.Max, s.Min
	}
	return s, true
}

func parseAmount(s string) (float64, bool) {
	if thousandsSepRe.MatchString(s) {
		s = strings.NewReplacer(",", "", ".", "", " ", "", " ", "").Replace(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func multiplier(suffix string) float64 {
	switch suffix {
	case "k":
		return 1_000
	case "m":
		return 1_000_000
	default:
		return 1
	}
}

func detectCurrency(text string) string {
	upper := strings.ToUpper(text)
	for _, code := range currencyCodes {
		if strings.Contains(upper, code) {
			return code
		}
	}
	lower := strings.ToLower(text)
	for _, p := range currencyPrefixes {
		if strings.Contains(lower, p.prefix) {
			return p.code
		}
	}
	return ""
}
