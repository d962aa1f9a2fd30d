package job

import (
	"strings"
)

// techTerms maps a canonical technology name to the spellings recognised in
// listing text. Order defines the output order of ExtractTechStack.
var techTerms = []struct {
	name    string
	aliases []string
}{
	{"python", []string{"python"}},
	{"go", []string{"golang", "go developer", "go engineer"}},
	{"java", []string{"java"}},
	{"kotlin", []string{"kotlin"}},
	{"scala", []string{"scala"}},
	{"javascript", []string{"javascript", "ecmascript"}},
	{"typescript", []string{"typescript"}},
	{"node.js", []string{"node.js", "nodejs", "node"}},
	{"react", []string{"react", "react.js", "reactjs"}},
	{"vue", []string{"vue", "vue.js", "vuejs"}},
	{"angular", []string{"angular"}},
	{"rust", []string{"rust"}},
	{"c++", []string{"c++", "cpp"}},
	{"c#", []string{"c#", "csharp"}},
	{".net", []string{".net", "dotnet"}},
	{"ruby", []string{"ruby"}},
	{"rails", []string{"rails", "ruby on rails"}},
	{"php", []string{"php"}},
	{"laravel", []string{"laravel"}},
	{"django", []string{"django"}},
	{"flask", []string{"flask"}},
	{"fastapi", []string{"fastapi"}},
	{"spring", []string{"spring boot", "spring"}},
	{"swift", []string{"swift"}},
	{"elixir", []string{"elixir"}},
	{"sql", []string{"sql"}},
	{"postgresql", []string{"postgresql", "postgres"}},
	{"mysql", []string{"mysql"}},
	{"mongodb", []string{"mongodb", "mongo"}},
	{"redis", []string{"redis"}},
	{"elasticsearch", []string{"elasticsearch"}},
	{"kafka", []string{"kafka"}},
	{"graphql", []string{"graphql"}},
	{"aws", []string{"aws", "amazon web services"}},
	{"gcp", []string{"gcp", "google cloud"}},
	{"azure", []string{"azure"}},
	{"docker", []string{"docker"}},
	{"kubernetes", []string{"kubernetes", "k8s"}},
	{"terraform", []string{"terraform"}},
	{"linux", []string{"linux"}},
	{"spark", []string{"spark", "pyspark"}},
	{"pandas", []string{"pandas"}},
	{"pytorch", []string{"pytorch"}},
	{"tensorflow", []string{"tensorflow"}},
}

// ExtractTechStack returns the canonical technologies mentioned in a listing
func ExtractTechStack(title, description string, tags []string) []string {
	text := strings.ToLower(title + "\n" + description + "\n" + strings.Join(tags, "\n"))

	var out []string
	for _, term := range techTerms {
		for _, alias := range term.aliases {
			if containsTerm(text, alias) {
				out = append(out, term.name)
				break
			}
		}
	}
	return out
}

// containsTerm finds term bounded by non-word characters. '+', '#' and '.'
// count as word characters after a match so "c" never matches "c++".
func containsTerm(text, term string) bool {
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], term)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		from = start + 1
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	return i == 0 || !isWordByte(text[i-1])
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	c := text[i]
	if c == '.' {
		// sentence punctuation: "python." still counts
		return i+1 >= len(text) || !isWordByte(text[i+1])
	}
	return !isWordByte(c) && c != '+' && c != '#'
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
