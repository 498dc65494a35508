package core

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ai-startup-tracker/tracker/internal/aggregate"
	"github.com/ai-startup-tracker/tracker/internal/cache"
	apperrors "github.com/ai-startup-tracker/tracker/internal/errors"
	"github.com/ai-startup-tracker/tracker/internal/query"
	"github.com/ai-startup-tracker/tracker/internal/store"
)

const (
	statsListSize = 10
	newWindow     = 7 * 24 * time.Hour
)

// DirectoryService answers the read endpoints: listings, detail, investors
// and dashboard stats.
type DirectoryService struct {
	store *store.Store
	cache *cache.Cache
	now   func() time.Time
}

func NewDirectoryService(s *store.Store, c *cache.Cache) *DirectoryService {
	return &DirectoryService{store: s, cache: c, now: time.Now}
}

type StartupPage struct {
	Data  []store.StartupListItem `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

type PeoplePage struct {
	Data  []store.Person `json:"data"`
	Total int64          `json:"total"`
}

type ProductList struct {
	Data       []store.Product `json:"data"`
	Categories []string        `json:"categories"`
}

type VCList struct {
	Data  []aggregate.VC `json:"data"`
	Total int            `json:"total"`
}

// StartupDetail is a startup with its related people, news and products.
type StartupDetail struct {
	store.Startup
	TechStackItems []string        `json:"tech_stack_items"`
	Persons        []store.Person  `json:"persons"`
	Content        []store.Content `json:"content"`
	Products       []store.Product `json:"products"`
}

type Stats struct {
	TotalStartups int64                 `json:"totalStartups"`
	Regions       []store.RegionCount   `json:"regions"`
	AvgRelevance  float64               `json:"avgRelevance"`
	NewThisWeek   int64                 `json:"newThisWeek"`
	Verticals     []store.VerticalCount `json:"verticals"`
	Recent        []store.RecentStartup `json:"recent"`
	TopFunded     []store.FundedStartup `json:"topFunded"`
}

// cached serves p from the cache unless refresh was asked for; on a miss or a
// refresh it loads, stores and returns the fresh value.
func cached[T any](c *cache.Cache, p query.Params, load func() (T, error)) (T, error) {
	key := cache.Key(p.Resource, p.Canonical())
	if !p.Refresh {
		if v, ok := c.Get(key); ok {
			if t, ok := v.(T); ok {
				log.Debug().Str("key", key).Msg("cache hit")
				return t, nil
			}
		}
	}
	v, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}

func (s *DirectoryService) ListStartups(ctx context.Context, values url.Values) (*StartupPage, error) {
	p := query.Sanitize(query.Startups(s.store.Dialect()), values)
	return cached(s.cache, p, func() (*StartupPage, error) {
		sel := query.StartupList(p)
		total, err := s.store.Count(ctx, sel.Count())
		if err != nil {
			return nil, apperrors.NewInternal("Failed to fetch startups", err)
		}
		items, err := s.store.ListStartups(ctx, sel.Data())
		if err != nil {
			return nil, apperrors.NewInternal("Failed to fetch startups", err)
		}
		return &StartupPage{Data: items, Total: total, Page: p.Page, Limit: p.Limit}, nil
	})
}

func (s *DirectoryService) ListPeople(ctx context.Context, values url.Values) (*PeoplePage, error) {
	p := query.Sanitize(query.People(), values)
	return cached(s.cache, p, func() (*PeoplePage, error) {
		sel := query.PeopleList(p)
		total, err := s.store.Count(ctx, sel.Count())
		if err != nil {
			return nil, apperrors.NewInternal("Failed to fetch people", err)
		}
		people, err := s.store.Persons(ctx, sel.Data())
		if err != nil {
			return nil, apperrors.NewInternal("Failed to fetch people", err)
		}
		return &PeoplePage{Data: people, Total: total}, nil
	})
}

// ListProducts is uncached.
func (s *DirectoryService) ListProducts(ctx context.Context, values url.Values) (*ProductList, error) {
	p := query.Sanitize(query.Products(), values)
	products, err := s.store.Products(ctx, query.ProductList(p))
	if err != nil {
		return nil, apperrors.NewInternal("Failed to fetch products", err)
	}
	categories, err := s.store.ProductCategories(ctx)
	if err != nil {
		return nil, apperrors.NewInternal("Failed to fetch products", err)
	}
	return &ProductList{Data: products, Categories: categories}, nil
}

// GetStartup resolves rawID and loads the relations by name. Unknown or
// malformed ids are not found, and no relation is queried for them.
func (s *DirectoryService) GetStartup(ctx context.Context, rawID string) (*StartupDetail, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil || id < 1 {
		return nil, apperrors.NewNotFound()
	}
	st, err := s.store.GetStartup(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternal("Failed to fetch startup", err)
	}
	if st == nil {
		return nil, apperrors.NewNotFound()
	}

	detail := &StartupDetail{Startup: *st, TechStackItems: []string{}}
	if st.TechStack != nil {
		detail.TechStackItems = aggregate.SplitList(*st.TechStack)
	}
	if detail.Persons, err = s.store.Persons(ctx, query.PersonsFor(st.Name)); err != nil {
		return nil, apperrors.NewInternal("Failed to fetch startup", err)
	}
	if detail.Content, err = s.store.Content(ctx, query.ContentFor(st.Name)); err != nil {
		return nil, apperrors.NewInternal("Failed to fetch startup", err)
	}
	if detail.Products, err = s.store.Products(ctx, query.ProductsFor(st.Name)); err != nil {
		return nil, apperrors.NewInternal("Failed to fetch startup", err)
	}
	return detail, nil
}

// ListVCs caches the filtered index under the search term.
func (s *DirectoryService) ListVCs(ctx context.Context, values url.Values) (*VCList, error) {
	p := query.Sanitize(query.VCs(), values)
	return cached(s.cache, p, func() (*VCList, error) {
		rows, err := s.store.InvestorRows(ctx)
		if err != nil {
			return nil, apperrors.NewInternal("Failed to fetch VCs", err)
		}
		vcs := aggregate.FilterVCs(aggregate.BuildVCIndex(rows), p.Search)
		return &VCList{Data: vcs, Total: len(vcs)}, nil
	})
}

func (s *DirectoryService) Stats(ctx context.Context, values url.Values) (*Stats, error) {
	p := query.Sanitize(query.Stats(), values)
	return cached(s.cache, p, func() (*Stats, error) {
		st, err := s.loadStats(ctx)
		if err != nil {
			return nil, apperrors.NewInternal("Failed to fetch stats", err)
		}
		return st, nil
	})
}

func (s *DirectoryService) loadStats(ctx context.Context) (*Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.TotalStartups, err = s.store.Count(ctx, query.TotalStartups()); err != nil {
		return nil, err
	}
	if st.Regions, err = s.store.RegionCounts(ctx); err != nil {
		return nil, err
	}
	avg, err := s.store.Average(ctx, query.AverageRelevance())
	if err != nil {
		return nil, err
	}
	st.AvgRelevance = math.Round(avg*10) / 10
	if st.NewThisWeek, err = s.store.Count(ctx, query.DiscoveredSince(s.now().Add(-newWindow))); err != nil {
		return nil, err
	}
	if st.Verticals, err = s.store.VerticalCounts(ctx); err != nil {
		return nil, err
	}
	if st.Recent, err = s.store.RecentStartups(ctx, statsListSize); err != nil {
		return nil, err
	}
	if st.TopFunded, err = s.store.TopFunded(ctx, statsListSize); err != nil {
		return nil, err
	}
	return &st, nil
}

// Flush empties the response cache and reports how many entries went.
func (s *DirectoryService) Flush() int {
	return s.cache.Clear("")
}
