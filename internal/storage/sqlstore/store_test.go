package sqlstore

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/domain/job"
)

func listing(title string) domain.NormalizedListing {
	return domain.NormalizedListing{
		Title:          title,
		Company:        "Acme Inc.",
		Location:       "Remote",
		ApplicationURL: "https://jobs.example.com/" + title,
		JobType:        domain.JobTypeFullTime,
		RemoteOption:   domain.RemoteFull,
		Source:         "remotive",
		TechStack:      []string{"go", "kubernetes"},
		FetchedAt:      time.Date(2026, 10, 2, 8, 0, 0, 0, time.UTC),
	}
}

func TestRebind(t *testing.T) {
	assert.Equal(t, "a = ? AND b = ?", New(nil, SQLite).rebind("a = ? AND b = ?"))
	assert.Equal(t, "a = $1 AND b = $2", New(nil, Postgres).rebind("a = ? AND b = ?"))
}

func TestUpsertListings_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := New(db, Postgres)
	l := listing("Go Engineer")

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO listings (") + `.*VALUES \(\$1, \$2,.*\$18\)\s+ON CONFLICT \(id\) DO UPDATE`)
	prep.ExpectExec().
		WithArgs(
			job.ListingID(l).String(), job.DedupKey(l),
			"Go Engineer", "Acme Inc.", "Remote", "", l.ApplicationURL,
			"full_time", "remote", 0.0, 0.0, "", "remotive",
			"go,kubernetes", "", nil, l.FetchedAt, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.UpsertListings(context.Background(), []domain.NormalizedListing{l}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertListings_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := New(db, Postgres)

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO listings").
		ExpectExec().
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = store.UpsertListings(context.Background(), []domain.NormalizedListing{listing("Go Engineer")})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertListings_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, New(db, SQLite).UpsertListings(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDs_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	l := listing("Go Engineer")
	id := job.ListingID(l)

	rows := sqlmock.NewRows([]string{
		"title", "company", "location", "description", "application_url", "job_type",
		"remote_option", "salary_min", "salary_max", "currency", "source", "tech_stack", "external_id",
		"posted_at", "fetched_at",
	}).AddRow(
		l.Title, l.Company, l.Location, "", l.ApplicationURL, "full_time",
		"remote", 0.0, 0.0, "", "remotive", "go,kubernetes", "",
		nil, l.FetchedAt,
	)
	mock.ExpectQuery(`SELECT .* FROM listings WHERE id IN \(\$1\)`).
		WithArgs(id.String()).
		WillReturnRows(rows)

	got, err := New(db, Postgres).FindByIDs(context.Background(), []domain.ListingID{id})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, l.Title, got[0].Title)
	assert.Equal(t, domain.RemoteFull, got[0].RemoteOption)
	assert.Equal(t, []string{"go", "kubernetes"}, got[0].TechStack)
	assert.True(t, got[0].PostedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mongo", "x")
	assert.ErrorContains(t, err, "unsupported driver")
}

func TestSQLite_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, SQLite, filepath.Join(t.TempDir(), "listings.db"))
	require.NoError(t, err)
	defer store.Close()

	first := listing("Go Engineer")
	require.NoError(t, store.UpsertListings(ctx, []domain.NormalizedListing{first, listing("SRE")}))

	updated := first
	updated.SalaryMin, updated.SalaryMax, updated.Currency = 90000, 120000, "USD"
	require.NoError(t, store.UpsertListings(ctx, []domain.NormalizedListing{updated}))

	got, err := store.FindByIDs(ctx, []domain.ListingID{job.ListingID(first), job.ListingID(listing("SRE"))})
	require.NoError(t, err)
	require.Len(t, got, 2)

	byTitle := map[string]domain.NormalizedListing{}
	for _, l := range got {
		byTitle[l.Title] = l
	}
	assert.Equal(t, 90000.0, byTitle["Go Engineer"].SalaryMin)
	assert.Equal(t, "USD", byTitle["Go Engineer"].Currency)
}
