package store

import (
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/ai-startup-tracker/tracker/internal/query"
)

// SQLiteDriver is go-sqlite3 with the tracker's scalar functions registered
// on every connection. Open uses it whenever "sqlite3" is requested.
const SQLiteDriver = "sqlite3_tracker"

func init() {
	sql.Register(SQLiteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(query.FundingDigitsFunc, FundingDigits, true)
		},
	})
}

// FundingDigits keeps only the digits and dots of s, the same filter MySQL
// applies with REGEXP_REPLACE.
func FundingDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
}

func driverName(driver string) string {
	if driver == "sqlite3" {
		return SQLiteDriver
	}
	return driver
}
