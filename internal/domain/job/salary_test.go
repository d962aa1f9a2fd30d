package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSalary(t *testing.T) {
	cases := []struct {
		in   string
		want Salary
		ok   bool
	}{
		{"$80k - $120k", Salary{Min: 80000, Max: 120000, Currency: "USD"}, true},
		{"80-120k USD", Salary{Min: 80000, Max: 120000, Currency: "USD"}, true},
		{"£40,000", Salary{Min: 40000, Max: 40000, Currency: "GBP"}, true},
		{"€50.000–60.000 a year", Salary{Min: 50000, Max: 60000, Currency: "EUR"}, true},
		{"CA$95,000 to 110,000", Salary{Min: 95000, Max: 110000, Currency: "CAD"}, true},
		{"120000 - 90000", Salary{Min: 90000, Max: 120000}, true},
		{"1.5m", Salary{Min: 1500000, Max: 1500000}, true},
		{"competitive", Salary{}, false},
		{"", Salary{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseSalary(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
