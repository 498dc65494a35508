// Package storetest provides an in-memory SQLite store for tests, plus a
// query counter for asserting cache behaviour.
package storetest

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ai-startup-tracker/tracker/internal/query"
	"github.com/ai-startup-tracker/tracker/internal/store"
)

// DB counts the statements issued through it.
type DB struct {
	*sql.DB
	queries atomic.Int64
	execs   atomic.Int64
}

func (d *DB) QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	d.queries.Add(1)
	return d.DB.QueryContext(ctx, q, args...)
}

func (d *DB) QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row {
	d.queries.Add(1)
	return d.DB.QueryRowContext(ctx, q, args...)
}

func (d *DB) ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error) {
	d.execs.Add(1)
	return d.DB.ExecContext(ctx, q, args...)
}

// Queries is the number of reads since the last Reset.
func (d *DB) Queries() int64 { return d.queries.Load() }

// Execs is the number of writes since the last Reset.
func (d *DB) Execs() int64 { return d.execs.Load() }

func (d *DB) Reset() {
	d.queries.Store(0)
	d.execs.Store(0)
}

// New returns a store over a fresh, schema-initialised in-memory database.
// Counters start at zero.
func New(t testing.TB) (*store.Store, *DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sqlDB, err := sql.Open(store.SQLiteDriver, dsn)
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	db := &DB{DB: sqlDB}
	s := store.New(db, query.SQLite)
	require.NoError(t, s.InitSchema(context.Background()))
	db.Reset()
	return s, db
}

// Insert adds one row to table and returns its id. Counters are not touched.
func Insert(t testing.TB, db *DB, table string, fields map[string]any) int64 {
	t.Helper()
	cols := make([]string, 0, len(fields))
	for c := range fields {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = fields[c]
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), query.Placeholders(len(cols)))
	res, err := db.DB.Exec(stmt, args...)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// Count returns the number of rows in table without touching the counters.
func Count(t testing.TB, db *DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.DB.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
