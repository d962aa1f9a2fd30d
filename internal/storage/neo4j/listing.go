package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/domain/job"
	pkgneo4j "github.com/honeycarbs/jobscout/pkg/neo4j"
)

var _ job.Repository = (*ListingRepository)(nil)

// ListingRepository implements job.Repository with Neo4j. Listings link to
// their Company, Source and tech stack Skill nodes.
type ListingRepository struct {
	client *pkgneo4j.Client
}

// NewListingRepository creates a ListingRepository with a Neo4j client
func NewListingRepository(client *pkgneo4j.Client) *ListingRepository {
	return &ListingRepository{client: client}
}

const upsertListingsQuery = `
	UNWIND $listings AS l
	MERGE (j:Listing {id: l.id})
	SET j.title = l.title,
	    j.location = l.location,
	    j.description = l.description,
	    j.url = l.url,
	    j.jobType = l.jobType,
	    j.remote = l.remote,
	    j.salaryMin = l.salaryMin,
	    j.salaryMax = l.salaryMax,
	    j.currency = l.currency,
	    j.externalId = l.externalId,
	    j.postedAt = CASE WHEN l.postedAt > 0 THEN datetime({epochMillis: l.postedAt}) ELSE null END,
	    j.fetchedAt = datetime({epochMillis: l.fetchedAt})
	WITH j, l
	MERGE (c:Company {key: l.companyKey})
	SET c.name = l.company
	MERGE (j)-[:POSTED_BY]->(c)
	WITH j, l
	MERGE (s:Source {name: l.source})
	MERGE (j)-[:FOUND_ON]->(s)
	WITH j, l
	FOREACH (skill IN l.techStack |
		MERGE (k:Skill {name: skill})
		MERGE (j)-[:REQUIRES]->(k)
	)
`

// UpsertListings merges listings by their dedup-derived ID
func (r *ListingRepository) UpsertListings(ctx context.Context, listings []domain.NormalizedListing) error {
	if len(listings) == 0 {
		return nil
	}

	session := r.client.WriteSession(ctx)
	defer session.Close(ctx)

	params := make([]map[string]any, 0, len(listings))
	for _, l := range listings {
		params = append(params, listingParams(l))
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, upsertListingsQuery, map[string]any{"listings": params})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("neo4j: upsert %d listings: %w", len(listings), err)
	}
	return nil
}

const findListingsQuery = `
	MATCH (j:Listing)
	WHERE j.id IN $ids
	OPTIONAL MATCH (j)-[:POSTED_BY]->(c:Company)
	OPTIONAL MATCH (j)-[:FOUND_ON]->(s:Source)
	OPTIONAL MATCH (j)-[:REQUIRES]->(k:Skill)
	RETURN j, c.name AS company, s.name AS source, collect(DISTINCT k.name) AS skills
`

// FindByIDs loads listings by ID; unknown IDs are skipped
func (r *ListingRepository) FindByIDs(ctx context.Context, ids []domain.ListingID) ([]domain.NormalizedListing, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	session := r.client.ReadSession(ctx)
	defer session.Close(ctx)

	idStrings := make([]string, 0, len(ids))
	for _, id := range ids {
		idStrings = append(idStrings, id.String())
	}

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, findListingsQuery, map[string]any{"ids": idStrings})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}

		listings := make([]domain.NormalizedListing, 0, len(records))
		for _, rec := range records {
			node, _, err := neo4j.GetRecordValue[neo4j.Node](rec, "j")
			if err != nil {
				continue
			}
			l := listingFromProps(node.Props)
			l.Company, _ = stringValue(rec, "company")
			l.Source, _ = stringValue(rec, "source")
			if skills, ok := rec.Get("skills"); ok {
				if list, ok := skills.([]any); ok {
					for _, s := range list {
						if name, ok := s.(string); ok {
							l.TechStack = append(l.TechStack, name)
						}
					}
				}
			}
			listings = append(listings, l)
		}
		return listings, nil
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: find listings: %w", err)
	}
	return out.([]domain.NormalizedListing), nil
}

func listingParams(l domain.NormalizedListing) map[string]any {
	var postedAt int64
	if !l.PostedAt.IsZero() {
		postedAt = l.PostedAt.UnixMilli()
	}
	fetchedAt := l.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	techStack := l.TechStack
	if techStack == nil {
		techStack = []string{}
	}

	return map[string]any{
		"id":          job.ListingID(l).String(),
		"title":       l.Title,
		"company":     l.Company,
		"companyKey":  job.NormalizeKeyPart(l.Company),
		"location":    l.Location,
		"description": l.Description,
		"url":         l.ApplicationURL,
		"jobType":     string(l.JobType),
		"remote":      string(l.RemoteOption),
		"salaryMin":   l.SalaryMin,
		"salaryMax":   l.SalaryMax,
		"currency":    l.Currency,
		"externalId":  l.ExternalID,
		"source":      l.Source,
		"techStack":   techStack,
		"postedAt":    postedAt,
		"fetchedAt":   fetchedAt.UnixMilli(),
	}
}

func listingFromProps(props map[string]any) domain.NormalizedListing {
	str := func(k string) string {
		s, _ := props[k].(string)
		return s
	}
	num := func(k string) float64 {
		switch v := props[k].(type) {
		case float64:
			return v
		case int64:
			return float64(v)
		}
		return 0
	}

	return domain.NormalizedListing{
		Title:          str("title"),
		Location:       str("location"),
		Description:    str("description"),
		ApplicationURL: str("url"),
		JobType:        domain.JobType(str("jobType")),
		RemoteOption:   domain.RemoteOption(str("remote")),
		SalaryMin:      num("salaryMin"),
		SalaryMax:      num("salaryMax"),
		Currency:       str("currency"),
		ExternalID:     str("externalId"),
		PostedAt:       timeValue(props["postedAt"]),
		FetchedAt:      timeValue(props["fetchedAt"]),
	}
}

func timeValue(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case neo4j.LocalDateTime:
		return t.Time().UTC()
	}
	return time.Time{}
}

func stringValue(rec *neo4j.Record, key string) (string, bool) {
	v, ok := rec.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
