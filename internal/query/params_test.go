package query

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(raw string) url.Values {
	v, err := url.ParseQuery(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func TestSanitize_Page(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"page=3", 3},
		{"page=0", 1},
		{"page=-7", 1},
		{"page=abc", 1},
		{"page=2.5", 1},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p := Sanitize(People(), values(tt.raw))
			assert.Equal(t, tt.want, p.Page)
		})
	}
}

func TestSanitize_Limit(t *testing.T) {
	tests := []struct {
		name string
		res  Resource
		raw  string
		want int
	}{
		{"default", People(), "", 50},
		{"in range", People(), "limit=20", 20},
		{"clamped to listing max", People(), "limit=500", 100},
		{"clamped to one", People(), "limit=0", 1},
		{"negative", Startups(SQLite), "limit=-5", 1},
		{"non-numeric", Startups(SQLite), "limit=lots", 50},
		{"feed max", Feed(), "limit=1000", 200},
		{"feed in range", Feed(), "limit=150", 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Sanitize(tt.res, values(tt.raw))
			assert.Equal(t, tt.want, p.Limit)
		})
	}
}

func TestSanitize_UnknownSortFallsBackToDefault(t *testing.T) {
	for _, raw := range []string{"sort=password", "sort=name;DROP TABLE key_persons", "sort=", "sort=NAME"} {
		p := Sanitize(People(), values(raw))
		assert.Equal(t, "name", p.Sort, raw)
		assert.Contains(t, p.OrderBy(), "kp.name ASC", raw)
	}

	p := Sanitize(Startups(SQLite), values("sort=1=1"))
	assert.Equal(t, "discovered_at", p.Sort)
	assert.Equal(t, "ORDER BY s.discovered_at DESC, s.id ASC", p.OrderBy())
}

func TestSanitize_Order(t *testing.T) {
	assert.Equal(t, Asc, Sanitize(People(), values("")).Order)
	assert.Equal(t, Desc, Sanitize(People(), values("order=DESC")).Order)
	assert.Equal(t, Asc, Sanitize(People(), values("order=desc")).Order)
	assert.Equal(t, Desc, Sanitize(Startups(SQLite), values("order=sideways")).Order)
	assert.Equal(t, Asc, Sanitize(Startups(SQLite), values("order=ASC")).Order)
}

func TestSanitize_Relevance(t *testing.T) {
	p := Sanitize(Startups(SQLite), values("min_relevance=7&max_relevance=9.5"))
	require.NotNil(t, p.MinRelevance)
	require.NotNil(t, p.MaxRelevance)
	assert.Equal(t, 7.0, *p.MinRelevance)
	assert.Equal(t, 9.5, *p.MaxRelevance)

	for _, raw := range []string{"min_relevance=high", "min_relevance=NaN", "min_relevance=Inf", "min_relevance="} {
		p := Sanitize(Startups(SQLite), values(raw))
		assert.Nil(t, p.MinRelevance, raw)
	}
}

func TestSanitize_IgnoresFiltersTheResourceDoesNotTake(t *testing.T) {
	p := Sanitize(People(), values("region=US&stage=Seed&needs_database=true&search=ceo"))
	assert.Empty(t, p.Region)
	assert.Empty(t, p.Stage)
	assert.False(t, p.NeedsDatabase)
	assert.Equal(t, "ceo", p.Search)
}

func TestSanitize_NeedsDatabaseOnlyLiteralTrue(t *testing.T) {
	assert.True(t, Sanitize(Startups(SQLite), values("needs_database=true")).NeedsDatabase)
	assert.False(t, Sanitize(Startups(SQLite), values("needs_database=1")).NeedsDatabase)
	assert.False(t, Sanitize(Startups(SQLite), values("needs_database=TRUE")).NeedsDatabase)
}

func TestSanitize_Refresh(t *testing.T) {
	assert.True(t, Sanitize(Stats(), values("refresh=true")).Refresh)
	assert.False(t, Sanitize(Stats(), values("refresh=1")).Refresh)
}

func TestSearchPattern(t *testing.T) {
	p := Sanitize(People(), values("search=%20Jane%20DOE%20"))
	assert.Equal(t, "Jane DOE", p.Search)
	assert.Equal(t, "%jane doe%", p.SearchPattern())
}

func TestOffset(t *testing.T) {
	p := Sanitize(People(), values("page=3&limit=20"))
	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, 0, Sanitize(Feed(), values("page=9")).Offset())
}

func TestCanonical_Deterministic(t *testing.T) {
	a := Sanitize(Startups(SQLite), values("region=US&sort=name&page=2&min_relevance=7"))
	b := Sanitize(Startups(SQLite), values("min_relevance=7.0&page=2&sort=name&region=US&refresh=true"))
	assert.Equal(t, a.Canonical(), b.Canonical())
	assert.NotContains(t, a.Canonical(), "refresh")
	assert.Equal(t, "limit=50&min_relevance=7&order=DESC&page=2&region=US&sort=name", a.Canonical())
}

func TestCanonical_DefaultsCollapse(t *testing.T) {
	a := Sanitize(People(), values(""))
	b := Sanitize(People(), values("page=0&limit=abc&sort=bogus&order=up"))
	assert.Equal(t, a.Canonical(), b.Canonical())
}

func TestCanonical_NoParamsResource(t *testing.T) {
	assert.Equal(t, "", Sanitize(Stats(), values("refresh=true&page=4")).Canonical())
	assert.Equal(t, "search=sequoia", Sanitize(VCs(), values("search=sequoia&limit=3")).Canonical())
}

func TestOrderBy_NullsLast(t *testing.T) {
	p := Sanitize(Startups(SQLite), values("sort=latest_news&order=ASC"))
	assert.Equal(t, "ORDER BY (ln.latest_news_at IS NULL) ASC, ln.latest_news_at ASC, s.id ASC", p.OrderBy())

	p = Sanitize(Startups(SQLite), values("sort=latest_news"))
	assert.Equal(t, "ORDER BY (ln.latest_news_at IS NULL) ASC, ln.latest_news_at DESC, s.id ASC", p.OrderBy())
}

func TestOrderBy_FixedIgnoresOrder(t *testing.T) {
	p := Sanitize(Feed(), values("sort=relevance&order=ASC"))
	assert.Equal(t, "ORDER BY s.relevance_score DESC, s.updated_at DESC, s.id ASC", p.OrderBy())

	p = Sanitize(Feed(), values(""))
	assert.True(t, strings.HasPrefix(p.OrderBy(), "ORDER BY s.updated_at DESC, s.discovered_at DESC"))
}
