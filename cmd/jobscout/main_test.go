package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
log:
  level: error
search:
  rate_limit_min_delay: 0.01
  rate_limit_max_delay: 0.02
sources:
  enable_arbeitnow: false
  enable_remotive: true
  enable_weworkremotely: false
  enable_linkedin: false
  enable_indeed: false
`

const testCassette = `
name: cli-remotive
interactions:
  - request:
      url: https://remotive.com/api/remote-jobs?search=golang&limit=10
    response:
      status: 200
      body: |
        {"jobs": [
          {"id": 1, "url": "https://remotive.com/1", "title": "Go Engineer", "company_name": "Acme",
           "candidate_required_location": "Worldwide", "salary": "$100k - $130k"},
          {"id": 2, "url": "https://remotive.com/1", "title": "Go Engineer", "company_name": "ACME",
           "candidate_required_location": "Worldwide"}
        ]}
`

func writeFiles(t *testing.T) (cfgPath, cassettePath string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "config.yaml")
	cassettePath = filepath.Join(dir, "remotive.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfig), 0o644))
	require.NoError(t, os.WriteFile(cassettePath, []byte(testCassette), 0o644))
	return cfgPath, cassettePath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "jobscout dev\n", out)
}

func TestSearch_FixturesJSON(t *testing.T) {
	cfgPath, cassettePath := writeFiles(t)

	out, err := execute(t, "search", "-c", cfgPath, "-k", "golang", "-n", "5", "--format", "json", "--fixtures", cassettePath)
	require.NoError(t, err)

	var got searchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Listings, 1, "same title, company and location collapse into one listing")
	assert.Equal(t, "Go Engineer", got.Listings[0].Title)
	assert.Equal(t, 100000.0, got.Listings[0].SalaryMin)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "remotive", got.Sources[0].Source)
	assert.Empty(t, got.Sources[0].Error)
}

func TestSearch_FixturesTable(t *testing.T) {
	cfgPath, cassettePath := writeFiles(t)

	out, err := execute(t, "search", "-c", cfgPath, "-k", "golang", "-n", "5", "--fixtures", cassettePath)
	require.NoError(t, err)

	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Go Engineer")
	assert.Contains(t, out, "100000-130000 USD")
	assert.Contains(t, out, "1 listing(s)")
}

func TestSearch_Flags(t *testing.T) {
	cfgPath, cassettePath := writeFiles(t)

	_, err := execute(t, "search", "-c", cfgPath, "-k", "go", "--format", "xml", "--fixtures", cassettePath)
	assert.ErrorContains(t, err, `unknown format "xml"`)

	_, err = execute(t, "search", "-c", cfgPath, "-k", "go", "--fixtures", cassettePath, "--record", "x.yaml")
	assert.Error(t, err)

	_, err = execute(t, "search", "-c", cfgPath, "-k", "go", "--store", "--fixtures", cassettePath)
	assert.ErrorContains(t, err, "--store needs storage.driver")
}

func TestSources(t *testing.T) {
	cfgPath, _ := writeFiles(t)

	out, err := execute(t, "sources", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "remotive")
	assert.Contains(t, out, "linkedin")
	assert.Contains(t, out, "10ms-20ms")
}
