package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Order is a sort direction. Only the two constants below ever reach SQL.
type Order string

const (
	Asc  Order = "ASC"
	Desc Order = "DESC"
)

// Filter names accepted in query strings.
const (
	FilterSearch        = "search"
	FilterRegion        = "region"
	FilterVertical      = "vertical"
	FilterStage         = "stage"
	FilterCategory      = "category"
	FilterNeedsDatabase = "needs_database"
	FilterMinRelevance  = "min_relevance"
	FilterMaxRelevance  = "max_relevance"
)

const (
	DefaultLimit  = 50
	MaxListLimit  = 100
	MaxFeedLimit  = 200
	refreshParam  = "refresh"
	refreshEnable = "true"
)

// Sort is a trusted ORDER BY term for one client-facing sort key.
type Sort struct {
	// Expr is the qualified column or expression, ordered by the request's direction.
	Expr string
	// NullsLast pushes NULL values of Expr after all others in both directions.
	NullsLast bool
	// Fixed, when set, is a complete ordering that ignores the request's direction.
	Fixed string
}

// Resource describes what a listing endpoint accepts.
type Resource struct {
	Name         string
	Filters      []string
	Sorts        map[string]Sort
	DefaultSort  string
	DefaultOrder Order
	// MaxLimit of zero means the resource takes no limit.
	MaxLimit int
	// Paged resources also take a page number.
	Paged bool
	// TieBreak is appended ascending to every ordering so pages are stable.
	TieBreak string
}

func (r Resource) accepts(filter string) bool {
	for _, f := range r.Filters {
		if f == filter {
			return true
		}
	}
	return false
}

func (r Resource) limited() bool { return r.MaxLimit > 0 }

func (r Resource) ordered() bool { return r.DefaultOrder != "" }

// Params is the sanitized, typed form of a request's query string.
type Params struct {
	Resource string

	Page  int
	Limit int
	Sort  string
	Order Order

	Search        string
	Region        string
	Vertical      string
	Stage         string
	Category      string
	NeedsDatabase bool
	MinRelevance  *float64
	MaxRelevance  *float64

	// Refresh skips the cache lookup but not the cache write.
	Refresh bool

	res Resource
}

// Sanitize turns raw query values into Params for res. Malformed input never
// fails; it falls back to the resource defaults.
func Sanitize(res Resource, values url.Values) Params {
	p := Params{
		Resource: res.Name,
		Refresh:  values.Get(refreshParam) == refreshEnable,
		res:      res,
	}

	if res.limited() {
		p.Page = 1
		p.Limit = parseLimit(values.Get("limit"), res.MaxLimit)
	}
	if res.Paged {
		p.Page = parsePage(values.Get("page"))
	}

	if len(res.Sorts) > 0 {
		p.Sort = res.DefaultSort
		if _, ok := res.Sorts[values.Get("sort")]; ok {
			p.Sort = values.Get("sort")
		}
	}
	if res.ordered() {
		p.Order = parseOrder(values.Get("order"), res.DefaultOrder)
	}

	text := func(filter string) string {
		if !res.accepts(filter) {
			return ""
		}
		return strings.TrimSpace(values.Get(filter))
	}
	p.Search = text(FilterSearch)
	p.Region = text(FilterRegion)
	p.Vertical = text(FilterVertical)
	p.Stage = text(FilterStage)
	p.Category = text(FilterCategory)
	p.NeedsDatabase = res.accepts(FilterNeedsDatabase) && values.Get(FilterNeedsDatabase) == "true"
	if res.accepts(FilterMinRelevance) {
		p.MinRelevance = parseNumber(values.Get(FilterMinRelevance))
	}
	if res.accepts(FilterMaxRelevance) {
		p.MaxRelevance = parseNumber(values.Get(FilterMaxRelevance))
	}
	return p
}

func parsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func parseLimit(raw string, maxLimit int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = DefaultLimit
	}
	return min(max(n, 1), maxLimit)
}

func parseOrder(raw string, def Order) Order {
	switch Order(raw) {
	case Asc, Desc:
		return Order(raw)
	}
	return def
}

// parseNumber returns nil for anything that is not a finite number, which
// drops the predicate instead of comparing against NaN.
func parseNumber(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Offset is the row offset of the requested page.
func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// SearchPattern is the bound LIKE pattern for the search filter.
func (p Params) SearchPattern() string {
	return "%" + strings.ToLower(p.Search) + "%"
}

// Canonical encodes the sanitized parameters deterministically (sorted keys).
// Two requests that sanitize to the same Params share a canonical form, and
// refresh is never part of it.
func (p Params) Canonical() string {
	v := url.Values{}
	if p.res.Paged {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.res.limited() {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	if p.Order != "" {
		v.Set("order", string(p.Order))
	}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set(FilterSearch, p.Search)
	set(FilterRegion, p.Region)
	set(FilterVertical, p.Vertical)
	set(FilterStage, p.Stage)
	set(FilterCategory, p.Category)
	if p.NeedsDatabase {
		v.Set(FilterNeedsDatabase, "true")
	}
	if p.MinRelevance != nil {
		v.Set(FilterMinRelevance, formatNumber(*p.MinRelevance))
	}
	if p.MaxRelevance != nil {
		v.Set(FilterMaxRelevance, formatNumber(*p.MaxRelevance))
	}
	return v.Encode()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// OrderBy renders the ORDER BY clause for p. Only allow-listed expressions
// are emitted.
func (p Params) OrderBy() string {
	s, ok := p.res.Sorts[p.Sort]
	if !ok {
		s = p.res.Sorts[p.res.DefaultSort]
	}
	order := p.Order
	if order == "" {
		order = Asc
	}

	var terms []string
	switch {
	case s.Fixed != "":
		terms = append(terms, s.Fixed)
	case s.NullsLast:
		terms = append(terms, "("+s.Expr+" IS NULL) ASC", s.Expr+" "+string(order))
	case s.Expr != "":
		terms = append(terms, s.Expr+" "+string(order))
	}
	if p.res.TieBreak != "" {
		terms = append(terms, p.res.TieBreak+" ASC")
	}
	if len(terms) == 0 {
		return ""
	}
	return "ORDER BY " + strings.Join(terms, ", ")
}
