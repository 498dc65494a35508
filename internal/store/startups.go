package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ai-startup-tracker/tracker/internal/query"
)

func startupDest(st *Startup) []any {
	return []any{
		&st.ID, &st.Name, &st.Website, &st.Region, &st.Country, &st.Vertical, &st.Product, &st.Stage,
		&st.FundingAmount, &st.Investors, &st.RelevanceScore, &st.NeedsDatabase,
		&st.TechStack, &st.PainPoints, &st.OutreachStatus, &st.LinkedIn, &st.GitHub, &st.Twitter, &st.Blog,
		&st.Source, &st.DiscoveredAt, &st.UpdatedAt,
	}
}

func scanStartup(sc scanner) (Startup, error) {
	var st Startup
	err := sc.Scan(startupDest(&st)...)
	return st, err
}

func scanStartupListItem(sc scanner) (StartupListItem, error) {
	var it StartupListItem
	err := sc.Scan(append(startupDest(&it.Startup), &it.LatestNewsAt)...)
	return it, err
}

// ListStartups runs a listing page statement built by query.StartupList.
func (s *Store) ListStartups(ctx context.Context, st query.Statement) ([]StartupListItem, error) {
	items, err := collect(ctx, s.db, st, scanStartupListItem)
	if err != nil {
		return nil, fmt.Errorf("failed to list startups: %w", err)
	}
	return items, nil
}

// StartupRows runs a statement selecting query.StartupColumns.
func (s *Store) StartupRows(ctx context.Context, st query.Statement) ([]Startup, error) {
	rows, err := collect(ctx, s.db, st, scanStartup)
	if err != nil {
		return nil, fmt.Errorf("failed to select startups: %w", err)
	}
	return rows, nil
}

// GetStartup returns nil, nil when no row has the id.
func (s *Store) GetStartup(ctx context.Context, id int64) (*Startup, error) {
	st := query.StartupByID(id)
	row, err := scanStartup(s.db.QueryRowContext(ctx, st.SQL, st.Args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get startup %d: %w", id, err)
	}
	return &row, nil
}

// FindStartupByName matches the trimmed name case-insensitively.
func (s *Store) FindStartupByName(ctx context.Context, name string) (*StartupRef, error) {
	var ref StartupRef
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name FROM ai_startups WHERE LOWER(name) = LOWER(?) LIMIT 1",
		strings.TrimSpace(name)).Scan(&ref.ID, &ref.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find startup by name: %w", err)
	}
	return &ref, nil
}

func (s *Store) InvestorRows(ctx context.Context) ([]InvestorRow, error) {
	rows, err := collect(ctx, s.db, query.InvestorRows(), func(sc scanner) (InvestorRow, error) {
		var r InvestorRow
		err := sc.Scan(&r.ID, &r.Name, &r.Investors)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list investors: %w", err)
	}
	return rows, nil
}

func (s *Store) RegionCounts(ctx context.Context) ([]RegionCount, error) {
	return collect(ctx, s.db, query.RegionCounts(), func(sc scanner) (RegionCount, error) {
		var r RegionCount
		err := sc.Scan(&r.Region, &r.Count)
		return r, err
	})
}

func (s *Store) VerticalCounts(ctx context.Context) ([]VerticalCount, error) {
	return collect(ctx, s.db, query.VerticalCounts(), func(sc scanner) (VerticalCount, error) {
		var v VerticalCount
		err := sc.Scan(&v.Vertical, &v.Count)
		return v, err
	})
}

func (s *Store) RecentStartups(ctx context.Context, limit int) ([]RecentStartup, error) {
	return collect(ctx, s.db, query.RecentStartups(limit), func(sc scanner) (RecentStartup, error) {
		var r RecentStartup
		err := sc.Scan(&r.ID, &r.Name, &r.Region, &r.Vertical, &r.RelevanceScore, &r.DiscoveredAt)
		return r, err
	})
}

func (s *Store) TopFunded(ctx context.Context, limit int) ([]FundedStartup, error) {
	return collect(ctx, s.db, query.TopFunded(s.dialect, limit), func(sc scanner) (FundedStartup, error) {
		var f FundedStartup
		err := sc.Scan(&f.ID, &f.Name, &f.FundingAmount, &f.FundingValue)
		return f, err
	})
}
