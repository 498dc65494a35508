package query

import "strings"

// Dialect selects the SQL flavour for the few expressions that differ
// between TiDB/MySQL and SQLite.
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite"
)

// FundingDigitsFunc is the SQLite scalar function, registered by the store,
// that keeps only the digits and dots of its TEXT argument.
const FundingDigitsFunc = "funding_digits"

// FundingValue returns a numeric expression for a free-text funding column,
// usable for ranking only. Empty leftovers become NULL.
func (d Dialect) FundingValue(col string) string {
	if d == MySQL {
		return "CAST(NULLIF(REGEXP_REPLACE(" + col + ", '[^0-9.]', ''), '') AS DECIMAL(20,2))"
	}
	return "CAST(NULLIF(" + FundingDigitsFunc + "(CAST(COALESCE(" + col + ", '') AS TEXT)), '') AS REAL)"
}

// HasFunding is the predicate that keeps rows with a usable funding value.
func HasFunding(col string) string {
	return col + " IS NOT NULL AND TRIM(" + col + ") != '' AND UPPER(TRIM(" + col + ")) != 'N/A'"
}

// ParseDialect maps a database/sql driver name to a Dialect.
func ParseDialect(driver string) Dialect {
	if strings.HasPrefix(strings.ToLower(driver), "mysql") {
		return MySQL
	}
	return SQLite
}
