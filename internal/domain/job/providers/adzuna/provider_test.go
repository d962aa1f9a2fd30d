package adzuna

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/jobscout/internal/domain"
	jobdomain "github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/pkg/adzuna"
	"github.com/honeycarbs/jobscout/pkg/fetch"
)

type fakeClient struct {
	pageSize int
	pages    map[int]adzuna.SearchPage
	errs     map[int]error
	calls    []adzuna.SearchParams
}

func (f *fakeClient) SearchJobs(_ context.Context, _ string, params adzuna.SearchParams) (adzuna.SearchPage, error) {
	f.calls = append(f.calls, params)
	if err := f.errs[params.Page]; err != nil {
		return adzuna.SearchPage{}, err
	}
	return f.pages[params.Page], nil
}

func (f *fakeClient) PageSize() int { return f.pageSize }

func jobs(page, n int) []adzuna.Job {
	out := make([]adzuna.Job, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, adzuna.Job{
			ID:           fmt.Sprintf("%d-%d", page, i),
			Title:        fmt.Sprintf("<strong>Go</strong> Developer %d-%d", page, i),
			CompanyName:  "Acme",
			Location:     "London",
			ContractTime: "full_time",
			SalaryMin:    50000,
			SalaryMax:    60000,
		})
	}
	return out
}

func TestSearch_PagesUntilBudget(t *testing.T) {
	client := &fakeClient{
		pageSize: 3,
		pages: map[int]adzuna.SearchPage{
			1: {Jobs: jobs(1, 3), Count: 100},
			2: {Jobs: jobs(2, 3), Count: 100},
		},
	}
	p, err := NewProvider(client, "gb", nil)
	require.NoError(t, err)

	got, err := p.Search(context.Background(), "go", "London", 5)
	require.NoError(t, err)

	require.Len(t, got, 5)
	assert.Len(t, client.calls, 2)
	assert.Equal(t, "Go Developer 1-0", got[0].Title)
	assert.Equal(t, "GBP", got[0].Currency)
	assert.Equal(t, domain.JobTypeFullTime, got[0].JobType)
	assert.Equal(t, "adzuna", got[0].Source)
	assert.Equal(t, "1-0", got[0].ExternalID)
}

func TestSearch_StopsAtReportedCount(t *testing.T) {
	client := &fakeClient{
		pageSize: 3,
		pages: map[int]adzuna.SearchPage{
			1: {Jobs: jobs(1, 3), Count: 3},
		},
	}
	p, err := NewProvider(client, "us", nil)
	require.NoError(t, err)

	got, err := p.Search(context.Background(), "go", "", 25)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Len(t, client.calls, 1)
}

func TestSearch_Failures(t *testing.T) {
	client := &fakeClient{
		pageSize: 3,
		errs:     map[int]error{1: errors.New("dial tcp: refused")},
	}
	p, err := NewProvider(client, "us", nil)
	require.NoError(t, err)

	got, err := p.Search(context.Background(), "go", "", 10)
	assert.Empty(t, got)
	assert.ErrorIs(t, err, jobdomain.ErrSourceUnavailable)

	client = &fakeClient{
		pageSize: 3,
		pages:    map[int]adzuna.SearchPage{1: {Jobs: jobs(1, 3), Count: 100}},
		errs:     map[int]error{2: &fetch.StatusError{StatusCode: 429}},
	}
	p, err = NewProvider(client, "us", nil)
	require.NoError(t, err)

	got, err = p.Search(context.Background(), "go", "", 10)
	assert.Len(t, got, 3)
	assert.ErrorIs(t, err, jobdomain.ErrSoftBlocked)
}
