package main

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tracker.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database_url: "+dbPath+"\nlog_level: error\n"), 0o644))
	t.Setenv("DATABASE_URL", dbPath)

	rootCmd.SetArgs([]string{"init-db", "--config", cfgPath})
	require.NoError(t, rootCmd.Execute())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()
	for _, table := range []string{"ai_startups", "key_persons", "company_content", "ai_products", "startup_suggestions", "feedback_tickets"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestInitDB_BadConfig(t *testing.T) {
	rootCmd.SetArgs([]string{"init-db", "--config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, rootCmd.Execute())
}
