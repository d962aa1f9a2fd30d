// Package sqlstore implements job.Repository on database/sql for SQLite and
// PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/domain/job"
)

// Dialects
const (
	SQLite   = "sqlite3"
	Postgres = "postgres"
)

var _ job.Repository = (*Store)(nil)

// Store persists listings in a single table keyed by the listing ID
type Store struct {
	db      *sql.DB
	dialect string
}

// Open connects to dsn with the given driver and applies the schema
func Open(ctx context.Context, dialect, dsn string) (*Store, error) {
	if dialect != SQLite && dialect != Postgres {
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", dialect)
	}

	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", dialect, err)
	}
	if dialect == SQLite {
		// one writer keeps sqlite from returning SQLITE_BUSY
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	s := New(db, dialect)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection pool
func New(db *sql.DB, dialect string) *Store {
	return &Store{db: db, dialect: dialect}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `CREATE TABLE IF NOT EXISTS listings (
	id TEXT PRIMARY KEY,
	dedup_key TEXT NOT NULL,
	title TEXT NOT NULL,
	company TEXT NOT NULL,
	location TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	application_url TEXT NOT NULL DEFAULT '',
	job_type TEXT NOT NULL,
	remote_option TEXT NOT NULL,
	salary_min DOUBLE PRECISION NOT NULL DEFAULT 0,
	salary_max DOUBLE PRECISION NOT NULL DEFAULT 0,
	currency TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL,
	tech_stack TEXT NOT NULL DEFAULT '',
	external_id TEXT NOT NULL DEFAULT '',
	posted_at TIMESTAMP NULL,
	fetched_at TIMESTAMP NOT NULL,
	first_seen_at TIMESTAMP NOT NULL
)`

// Migrate creates the listings table when missing
func (s *Store) Migrate(ctx context.Context) error {
	for _, q := range []string{
		schema,
		`CREATE INDEX IF NOT EXISTS idx_listings_source ON listings(source)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_fetched_at ON listings(fetched_at)`,
	} {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("sqlstore: migrate: %w", err)
		}
	}
	return nil
}

const upsertQuery = `INSERT INTO listings (
	id, dedup_key, title, company, location, description, application_url,
	job_type, remote_option, salary_min, salary_max, currency, source,
	tech_stack, external_id, posted_at, fetched_at, first_seen_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	title = excluded.title,
	company = excluded.company,
	location = excluded.location,
	description = excluded.description,
	application_url = excluded.application_url,
	job_type = excluded.job_type,
	remote_option = excluded.remote_option,
	salary_min = excluded.salary_min,
	salary_max = excluded.salary_max,
	currency = excluded.currency,
	source = excluded.source,
	tech_stack = excluded.tech_stack,
	external_id = excluded.external_id,
	posted_at = excluded.posted_at,
	fetched_at = excluded.fetched_at`

// UpsertListings writes all listings in one transaction
func (s *Store) UpsertListings(ctx context.Context, listings []domain.NormalizedListing) error {
	if len(listings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(upsertQuery))
	if err != nil {
		return fmt.Errorf("sqlstore: prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, l := range listings {
		fetchedAt := l.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = now
		}
		var postedAt any
		if !l.PostedAt.IsZero() {
			postedAt = l.PostedAt.UTC()
		}

		_, err := stmt.ExecContext(ctx,
			job.ListingID(l).String(), job.DedupKey(l),
			l.Title, l.Company, l.Location, l.Description, l.ApplicationURL,
			string(l.JobType), string(l.RemoteOption), l.SalaryMin, l.SalaryMax, l.Currency, l.Source,
			strings.Join(l.TechStack, ","), l.ExternalID, postedAt, fetchedAt.UTC(), now,
		)
		if err != nil {
			return fmt.Errorf("sqlstore: upsert %q: %w", l.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: commit: %w", err)
	}
	return nil
}

const selectColumns = `title, company, location, description, application_url, job_type,
	remote_option, salary_min, salary_max, currency, source, tech_stack, external_id,
	posted_at, fetched_at`

// FindByIDs loads listings by ID; unknown IDs are skipped
func (s *Store) FindByIDs(ctx context.Context, ids []domain.ListingID) ([]domain.NormalizedListing, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id.String()
	}
	query := "SELECT " + selectColumns + " FROM listings WHERE id IN (" + strings.Join(placeholders, ", ") + ") ORDER BY fetched_at, title"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: find listings: %w", err)
	}
	defer rows.Close()

	var out []domain.NormalizedListing
	for rows.Next() {
		var (
			l         domain.NormalizedListing
			jobType   string
			remote    string
			techStack string
			postedAt  sql.NullTime
		)
		if err := rows.Scan(
			&l.Title, &l.Company, &l.Location, &l.Description, &l.ApplicationURL, &jobType,
			&remote, &l.SalaryMin, &l.SalaryMax, &l.Currency, &l.Source, &techStack, &l.ExternalID,
			&postedAt, &l.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlstore: scan listing: %w", err)
		}
		l.JobType = domain.JobType(jobType)
		l.RemoteOption = domain.RemoteOption(remote)
		if techStack != "" {
			l.TechStack = strings.Split(techStack, ",")
		}
		if postedAt.Valid {
			l.PostedAt = postedAt.Time.UTC()
		}
		l.FetchedAt = l.FetchedAt.UTC()
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterate listings: %w", err)
	}
	return out, nil
}

// rebind turns ? placeholders into $n for PostgreSQL
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
