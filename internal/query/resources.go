package query

import (
	"strings"
	"time"
)

// Resource names, also used as cache key prefixes.
const (
	ResourceStartups = "startups"
	ResourcePeople   = "people"
	ResourceProducts = "products"
	ResourceVCs      = "vcs"
	ResourceStats    = "stats"
	ResourceFeed     = "rss"
)

// StartupColumns is the column list every startup row is scanned from.
const StartupColumns = `s.id, s.name, s.website, s.region, s.country, s.vertical, s.product, s.stage,
	s.funding_amount, s.investors, COALESCE(s.relevance_score, 0), COALESCE(s.needs_database, 0),
	s.tech_stack, s.pain_points, s.outreach_status, s.linkedin, s.github, s.twitter, s.blog,
	s.source, s.discovered_at, s.updated_at`

// LatestNewsJoin attaches the newest content date per startup as ln.latest_news_at.
const LatestNewsJoin = `LEFT JOIN (
		SELECT LOWER(startup_name) AS name_key, MAX(published_at) AS latest_news_at
		FROM company_content GROUP BY LOWER(startup_name)
	) ln ON ln.name_key = LOWER(s.name)`

const (
	PersonColumns = `kp.id, kp.name, kp.role, kp.startup_name, kp.linkedin, kp.github,
	kp.twitter, kp.email, s.id AS startup_id`
	personFrom = `key_persons kp LEFT JOIN ai_startups s ON LOWER(s.name) = LOWER(kp.startup_name)`

	ContentColumns = `c.id, c.startup_name, c.content_type, c.title, c.url, c.summary,
	c.relevance_to_tidb, c.published_at`

	ProductColumns = `p.id, p.name, p.company, p.url, p.description, p.category, p.region,
	p.discovered_at, s.id AS startup_id`
	productFrom = `ai_products p LEFT JOIN ai_startups s ON LOWER(s.name) = LOWER(p.company)`
)

// Startups is the /startups listing. funding_amount sorts by the parsed
// numeric value and latest_news by the newest content date, NULLs last.
func Startups(d Dialect) Resource {
	return Resource{
		Name: ResourceStartups,
		Filters: []string{
			FilterSearch, FilterRegion, FilterVertical, FilterStage,
			FilterNeedsDatabase, FilterMinRelevance, FilterMaxRelevance,
		},
		Sorts: map[string]Sort{
			"name":            {Expr: "s.name"},
			"region":          {Expr: "s.region", NullsLast: true},
			"vertical":        {Expr: "s.vertical", NullsLast: true},
			"stage":           {Expr: "s.stage", NullsLast: true},
			"relevance_score": {Expr: "s.relevance_score"},
			"discovered_at":   {Expr: "s.discovered_at"},
			"updated_at":      {Expr: "s.updated_at", NullsLast: true},
			"funding_amount":  {Expr: d.FundingValue("s.funding_amount"), NullsLast: true},
			"latest_news":     {Expr: "ln.latest_news_at", NullsLast: true},
		},
		DefaultSort:  "discovered_at",
		DefaultOrder: Desc,
		MaxLimit:     MaxListLimit,
		Paged:        true,
		TieBreak:     "s.id",
	}
}

// People is the /people listing.
func People() Resource {
	return Resource{
		Name:    ResourcePeople,
		Filters: []string{FilterSearch},
		Sorts: map[string]Sort{
			"name":    {Expr: "kp.name"},
			"role":    {Expr: "kp.role"},
			"company": {Expr: "kp.startup_name"},
		},
		DefaultSort:  "name",
		DefaultOrder: Asc,
		MaxLimit:     MaxListLimit,
		Paged:        true,
		TieBreak:     "kp.id",
	}
}

// Products is the /products listing; it is filtered by category only.
func Products() Resource {
	return Resource{Name: ResourceProducts, Filters: []string{FilterCategory}}
}

// VCs is the investor index; search applies after aggregation.
func VCs() Resource {
	return Resource{Name: ResourceVCs, Filters: []string{FilterSearch}}
}

// Stats takes no parameters besides refresh.
func Stats() Resource {
	return Resource{Name: ResourceStats}
}

// Feed is the RSS feed. Its sort keys carry their own direction.
func Feed() Resource {
	return Resource{
		Name: ResourceFeed,
		Filters: []string{
			FilterRegion, FilterVertical, FilterStage,
			FilterMinRelevance, FilterNeedsDatabase,
		},
		Sorts: map[string]Sort{
			"updated":     {Fixed: "s.updated_at DESC, s.discovered_at DESC"},
			"discovered":  {Fixed: "s.discovered_at DESC"},
			"relevance":   {Fixed: "s.relevance_score DESC, s.updated_at DESC"},
			"name":        {Fixed: "s.name ASC"},
			"latest_news": {Fixed: "(ln.latest_news_at IS NULL) ASC, ln.latest_news_at DESC"},
		},
		DefaultSort: "updated",
		MaxLimit:    MaxFeedLimit,
		TieBreak:    "s.id",
	}
}

// StartupList builds the count and page statements for /startups.
func StartupList(p Params) Select {
	b := &Builder{}
	if p.Search != "" {
		s := p.SearchPattern()
		b.Add("(LOWER(s.name) LIKE ? OR LOWER(s.product) LIKE ? OR LOWER(s.country) LIKE ? OR LOWER(s.vertical) LIKE ?)", s, s, s, s)
	}
	b.AddIf(p.Region != "", "s.region = ?", p.Region)
	b.AddIf(p.Vertical != "", "s.vertical = ?", p.Vertical)
	b.AddIf(p.Stage != "", "s.stage = ?", p.Stage)
	b.AddIf(p.NeedsDatabase, "s.needs_database = 1")
	if p.MinRelevance != nil {
		b.Add("s.relevance_score >= ?", *p.MinRelevance)
	}
	if p.MaxRelevance != nil {
		b.Add("s.relevance_score <= ?", *p.MaxRelevance)
	}

	return Select{
		Columns:   StartupColumns + ", ln.latest_news_at",
		From:      "ai_startups s " + LatestNewsJoin,
		CountFrom: "ai_startups s",
		Where:     b,
		OrderBy:   p.OrderBy(),
		Limit:     p.Limit,
		Offset:    p.Offset(),
	}
}

// PeopleList builds the count and page statements for /people.
func PeopleList(p Params) Select {
	b := &Builder{}
	if p.Search != "" {
		s := p.SearchPattern()
		b.Add("(LOWER(kp.name) LIKE ? OR LOWER(kp.role) LIKE ? OR LOWER(kp.startup_name) LIKE ?)", s, s, s)
	}
	return Select{
		Columns:   PersonColumns,
		From:      personFrom,
		CountFrom: "key_persons kp",
		Where:     b,
		OrderBy:   p.OrderBy(),
		Limit:     p.Limit,
		Offset:    p.Offset(),
	}
}

// ProductList returns every product, optionally narrowed to one category.
func ProductList(p Params) Statement {
	b := (&Builder{}).AddIf(p.Category != "", "p.category = ?", p.Category)
	return Statement{
		SQL:  join("SELECT", ProductColumns, "FROM", productFrom, b.Where(), "ORDER BY (p.discovered_at IS NULL) ASC, p.discovered_at DESC, p.id ASC"),
		Args: b.Args(),
	}
}

// ProductCategories lists the distinct non-null categories.
func ProductCategories() Statement {
	return Statement{SQL: "SELECT DISTINCT category FROM ai_products WHERE category IS NOT NULL ORDER BY category"}
}

// StartupByID selects one startup row.
func StartupByID(id int64) Statement {
	return Statement{
		SQL:  "SELECT " + StartupColumns + " FROM ai_startups s WHERE s.id = ?",
		Args: []any{id},
	}
}

// PersonsFor, ContentFor and ProductsFor select the relations of a startup
// by case-insensitive name equality.
func PersonsFor(name string) Statement {
	return Statement{
		SQL:  "SELECT " + PersonColumns + " FROM " + personFrom + " WHERE LOWER(kp.startup_name) = LOWER(?) ORDER BY kp.id ASC",
		Args: []any{name},
	}
}

func ContentFor(name string) Statement {
	return Statement{
		SQL: "SELECT " + ContentColumns + " FROM company_content c WHERE LOWER(c.startup_name) = LOWER(?)" +
			" ORDER BY (c.published_at IS NULL) ASC, c.published_at DESC, c.id ASC",
		Args: []any{name},
	}
}

func ProductsFor(name string) Statement {
	return Statement{
		SQL:  "SELECT " + ProductColumns + " FROM " + productFrom + " WHERE LOWER(p.company) = LOWER(?) ORDER BY p.id ASC",
		Args: []any{name},
	}
}

// InvestorRows selects the input of the VC index in a stable order.
func InvestorRows() Statement {
	return Statement{SQL: "SELECT s.id, s.name, s.investors FROM ai_startups s WHERE s.investors IS NOT NULL AND s.investors != '' ORDER BY s.id ASC"}
}

// FeedList builds the startup selection for the RSS feed.
func FeedList(p Params) Select {
	b := &Builder{}
	b.AddIf(p.Region != "", "s.region = ?", p.Region)
	b.AddIf(p.Vertical != "", "LOWER(s.vertical) = LOWER(?)", p.Vertical)
	b.AddIf(p.Stage != "", "s.stage = ?", p.Stage)
	if p.MinRelevance != nil {
		b.Add("s.relevance_score >= ?", *p.MinRelevance)
	}
	b.AddIf(p.NeedsDatabase, "s.needs_database = 1")
	return Select{
		Columns: StartupColumns,
		From:    "ai_startups s " + LatestNewsJoin,
		Where:   b,
		OrderBy: p.OrderBy(),
		Limit:   p.Limit,
	}
}

// NewsFor selects the content of the named startups, newest first. Both
// sides are folded by the database so they agree on non-ASCII names.
func NewsFor(names []string) Statement {
	args := make([]any, len(names))
	folded := make([]string, len(names))
	for i, n := range names {
		args[i] = n
		folded[i] = "LOWER(?)"
	}
	return Statement{
		SQL: "SELECT " + ContentColumns + " FROM company_content c WHERE LOWER(c.startup_name) IN (" + strings.Join(folded, ", ") + ")" +
			" ORDER BY (c.published_at IS NULL) ASC, c.published_at DESC, c.id ASC",
		Args: args,
	}
}

// Dashboard statements.

func TotalStartups() Statement {
	return Statement{SQL: "SELECT COUNT(*) AS count FROM ai_startups"}
}

func RegionCounts() Statement {
	return Statement{SQL: "SELECT region, COUNT(*) AS count FROM ai_startups GROUP BY region ORDER BY count DESC, region ASC"}
}

func VerticalCounts() Statement {
	return Statement{SQL: "SELECT vertical, COUNT(*) AS count FROM ai_startups WHERE vertical IS NOT NULL GROUP BY vertical ORDER BY count DESC, vertical ASC"}
}

func AverageRelevance() Statement {
	return Statement{SQL: "SELECT AVG(relevance_score) AS avg FROM ai_startups"}
}

// DiscoveredSince counts startups discovered at or after since. The bound is
// passed in rather than computed in SQL so both dialects agree, and bound in
// UTC to match CURRENT_TIMESTAMP defaults.
func DiscoveredSince(since time.Time) Statement {
	return Statement{SQL: "SELECT COUNT(*) AS count FROM ai_startups WHERE discovered_at >= ?", Args: []any{since.UTC()}}
}

func RecentStartups(limit int) Statement {
	return Statement{
		SQL:  "SELECT s.id, s.name, s.region, s.vertical, COALESCE(s.relevance_score, 0), s.discovered_at FROM ai_startups s ORDER BY s.discovered_at DESC, s.id ASC LIMIT ?",
		Args: []any{limit},
	}
}

// TopFunded ranks startups by parsed funding. Rows without a usable amount
// are excluded, not sorted last.
func TopFunded(d Dialect, limit int) Statement {
	value := d.FundingValue("s.funding_amount")
	return Statement{
		SQL: "SELECT s.id, s.name, s.funding_amount, " + value + " AS funding_value FROM ai_startups s" +
			" WHERE " + HasFunding("s.funding_amount") + " AND " + value + " IS NOT NULL" +
			" ORDER BY funding_value DESC, s.id ASC LIMIT ?",
		Args: []any{limit},
	}
}
