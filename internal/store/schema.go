package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ai-startup-tracker/tracker/internal/query"
)

// ErrSchemaUnsupported is returned by InitSchema for MySQL/TiDB, whose schema
// is owned by the ingestion pipeline.
var ErrSchemaUnsupported = errors.New("schema creation is only supported for sqlite")

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS ai_startups (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	website TEXT,
	region TEXT,
	country TEXT,
	vertical TEXT,
	product TEXT,
	stage TEXT,
	funding_amount TEXT,
	investors TEXT,
	relevance_score INTEGER DEFAULT 0,
	needs_database BOOLEAN DEFAULT FALSE,
	tech_stack TEXT,
	pain_points TEXT,
	outreach_status TEXT,
	linkedin TEXT,
	github TEXT,
	twitter TEXT,
	blog TEXT,
	source TEXT,
	discovered_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME
);

CREATE TABLE IF NOT EXISTS key_persons (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	role TEXT,
	startup_name TEXT,
	linkedin TEXT,
	github TEXT,
	twitter TEXT,
	email TEXT
);

CREATE TABLE IF NOT EXISTS company_content (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	startup_name TEXT,
	content_type TEXT,
	title TEXT,
	url TEXT,
	summary TEXT,
	relevance_to_tidb TEXT,
	published_at DATETIME
);

CREATE TABLE IF NOT EXISTS ai_products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	company TEXT,
	url TEXT,
	description TEXT,
	category TEXT,
	region TEXT,
	discovered_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS startup_suggestions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	website TEXT,
	notes TEXT,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS feedback_tickets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	type TEXT NOT NULL,
	startup_name TEXT,
	startup_id INTEGER,
	subject TEXT NOT NULL,
	details TEXT NOT NULL,
	website TEXT,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_content_startup ON company_content (startup_name);
CREATE INDEX IF NOT EXISTS idx_persons_startup ON key_persons (startup_name);
`

// InitSchema creates the tables if they do not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	if s.dialect != query.SQLite {
		return ErrSchemaUnsupported
	}
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
