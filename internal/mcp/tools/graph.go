package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/jobscout/pkg/logging"
)

// GraphReader runs read-only Cypher; implemented by pkg/neo4j.Client
type GraphReader interface {
	ReadRecords(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)
}

const (
	graphViewOverview  = "overview"
	graphViewSkills    = "skills"
	graphViewCompanies = "companies"
	graphViewListing   = "listing"
	graphViewRelated   = "related"
	graphViewCooccur   = "cooccurring"

	defaultGraphLimit = 20
	maxGraphLimit     = 200
)

var graphQueries = map[string]string{
	graphViewOverview: `
		MATCH (n)
		RETURN labels(n) AS labels, count(n) AS count
		ORDER BY count DESC
		LIMIT $limit`,
	graphViewSkills: `
		MATCH (l:Listing)-[:REQUIRES]->(s:Skill)
		RETURN s.name AS skill, count(l) AS listings
		ORDER BY listings DESC, skill
		LIMIT $limit`,
	graphViewCompanies: `
		MATCH (l:Listing)-[:POSTED_BY]->(c:Company)
		RETURN c.name AS company, count(l) AS listings, collect(DISTINCT l.source) AS sources
		ORDER BY listings DESC, company
		LIMIT $limit`,
	graphViewListing: `
		MATCH (l:Listing {id: $listingId})
		OPTIONAL MATCH (l)-[:POSTED_BY]->(c:Company)
		OPTIONAL MATCH (l)-[:FOUND_ON]->(src:Source)
		OPTIONAL MATCH (l)-[:REQUIRES]->(s:Skill)
		RETURN l, c, src.name AS source, collect(DISTINCT s.name) AS skills`,
	graphViewRelated: `
		MATCH (l:Listing {id: $listingId})-[:REQUIRES]->(s:Skill)<-[:REQUIRES]-(other:Listing)
		WHERE other.id <> $listingId
		WITH other, collect(DISTINCT s.name) AS shared
		RETURN other.id AS id, other.title AS title, other.company AS company, shared
		ORDER BY size(shared) DESC, title
		LIMIT $limit`,
	graphViewCooccur: `
		MATCH (l:Listing)-[:REQUIRES]->(s1:Skill)
		WHERE s1.name IN $skills
		MATCH (l)-[:REQUIRES]->(s2:Skill)
		WHERE NOT s2.name IN $skills
		WITH s2.name AS skill, count(DISTINCT l) AS listings, collect(DISTINCT s1.name) AS alongside
		RETURN skill, listings, alongside
		ORDER BY listings DESC, skill
		LIMIT $limit`,
}

// GraphInspectParams defines the arguments for the graph_inspect tool
type GraphInspectParams struct {
	View      string   `json:"view,omitempty" jsonschema:"overview, skills, companies, listing, related or cooccurring (default overview)"`
	ListingID string   `json:"listing_id,omitempty" jsonschema:"Listing for the listing and related views"`
	Skills    []string `json:"skills,omitempty" jsonschema:"Skills for the cooccurring view"`
	Limit     int      `json:"limit,omitempty" jsonschema:"Row cap for aggregate views (default 20)"`
}

type graphInspectTool struct {
	reader GraphReader
	logger *logging.Logger
}

// WithGraphInspect registers graph_inspect, a read-only view over stored listings
func WithGraphInspect(reader GraphReader) Option {
	return func(reg *registry) {
		if reader == nil {
			return
		}
		t := graphInspectTool{reader: reader, logger: reg.logger.Named("graph_inspect")}
		addTool(reg, &sdkmcp.Tool{
			Name:        "graph_inspect",
			Description: "Inspect the Neo4j listing graph: node counts, top skills and companies, one listing, related listings or co-occurring skills",
		}, t.handle)
	}
}

func (t graphInspectTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params GraphInspectParams) (*sdkmcp.CallToolResult, any, error) {
	view := strings.ToLower(strings.TrimSpace(params.View))
	if view == "" {
		view = graphViewOverview
	}
	query, ok := graphQueries[view]
	if !ok {
		return nil, nil, fmt.Errorf("unknown view %q", params.View)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultGraphLimit
	}
	if limit > maxGraphLimit {
		limit = maxGraphLimit
	}
	args := map[string]any{"limit": limit}
	switch view {
	case graphViewListing, graphViewRelated:
		if params.ListingID == "" {
			return nil, nil, fmt.Errorf("listing_id is required for the %s view", view)
		}
		args["listingId"] = params.ListingID
		if view == graphViewListing {
			delete(args, "limit")
		}
	case graphViewCooccur:
		skills := make([]string, 0, len(params.Skills))
		for _, sk := range params.Skills {
			if sk = strings.ToLower(strings.TrimSpace(sk)); sk != "" {
				skills = append(skills, sk)
			}
		}
		if len(skills) == 0 {
			return nil, nil, fmt.Errorf("skills are required for the cooccurring view")
		}
		args["skills"] = skills
	}

	records, err := t.reader.ReadRecords(ctx, query, args)
	if err != nil {
		t.logger.Error("graph_inspect failed", "view", view, "err", err)
		return nil, nil, err
	}
	return textResult(formatRecords(view, records)), nil, nil
}

func formatRecords(view string, records []*neo4j.Record) string {
	if len(records) == 0 {
		return fmt.Sprintf("[graph_inspect] %s: no rows", view)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[graph_inspect] %s: %d row(s)\n", view, len(records))
	for i, record := range records {
		fmt.Fprintf(&sb, "\n%d.", i+1)
		for j, key := range record.Keys {
			var val any
			if j < len(record.Values) {
				val = record.Values[j]
			}
			fmt.Fprintf(&sb, " %s=%s", key, formatValue(val))
		}
	}
	return sb.String()
}

func formatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return "null"
	case neo4j.Node:
		props, _ := json.Marshal(v.Props)
		return fmt.Sprintf("%v%s", v.Labels, props)
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, formatValue(item))
		}
		return "[" + strings.Join(items, ", ") + "]"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
