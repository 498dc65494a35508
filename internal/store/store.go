package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // TiDB / MySQL driver

	"github.com/ai-startup-tracker/tracker/internal/query"
)

// DBTX is the subset of *sql.DB the store needs.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db      DBTX
	dialect query.Dialect
	close   func() error
}

// Open connects with database/sql and verifies the connection.
func Open(ctx context.Context, driver, dsn string, maxOpenConns int) (*Store, error) {
	db, err := sql.Open(driverName(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := New(db, query.ParseDialect(driver))
	s.close = db.Close
	return s, nil
}

// New wraps an existing handle.
func New(db DBTX, d query.Dialect) *Store {
	return &Store{db: db, dialect: d}
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func (s *Store) Dialect() query.Dialect { return s.dialect }

// Count runs a single-value COUNT statement.
func (s *Store) Count(ctx context.Context, st query.Statement) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, st.SQL, st.Args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}

// Average runs a single-value AVG statement; NULL (no rows) yields 0.
func (s *Store) Average(ctx context.Context, st query.Statement) (float64, error) {
	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, st.SQL, st.Args...).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to average: %w", err)
	}
	return avg.Float64, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// collect runs st and scans every row with scan.
func collect[T any](ctx context.Context, db DBTX, st query.Statement, scan func(scanner) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}
