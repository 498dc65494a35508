package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Startup is a row of ai_startups. Nullable text columns are pointers so
// they serialize as null.
type Startup struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Website        *string  `json:"website"`
	Region         *string  `json:"region"`
	Country        *string  `json:"country"`
	Vertical       *string  `json:"vertical"`
	Product        *string  `json:"product"`
	Stage          *string  `json:"stage"`
	FundingAmount  *string  `json:"funding_amount"`
	Investors      *string  `json:"investors"`
	RelevanceScore int      `json:"relevance_score"`
	NeedsDatabase  bool     `json:"needs_database"`
	TechStack      *string  `json:"tech_stack"`
	PainPoints     *string  `json:"pain_points"`
	OutreachStatus *string  `json:"outreach_status"`
	LinkedIn       *string  `json:"linkedin"`
	GitHub         *string  `json:"github"`
	Twitter        *string  `json:"twitter"`
	Blog           *string  `json:"blog"`
	Source         *string  `json:"source"`
	DiscoveredAt   NullTime `json:"discovered_at"`
	UpdatedAt      NullTime `json:"updated_at"`
}

// StartupListItem is a listing row: the startup plus its newest content date.
type StartupListItem struct {
	Startup
	LatestNewsAt NullTime `json:"latest_news_at"`
}

// Person is a row of key_persons. StartupID is nil when no startup matches
// StartupName.
type Person struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Role        *string `json:"role"`
	StartupName *string `json:"startup_name"`
	LinkedIn    *string `json:"linkedin"`
	GitHub      *string `json:"github"`
	Twitter     *string `json:"twitter"`
	Email       *string `json:"email"`
	StartupID   *int64  `json:"startup_id"`
}

// Content is a news item from company_content.
type Content struct {
	ID              int64    `json:"id"`
	StartupName     *string  `json:"startup_name"`
	ContentType     *string  `json:"content_type"`
	Title           *string  `json:"title"`
	URL             *string  `json:"url"`
	Summary         *string  `json:"summary"`
	RelevanceToTiDB *string  `json:"relevance_to_tidb"`
	PublishedAt     NullTime `json:"published_at"`
}

// Product is a row of ai_products.
type Product struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Company      *string  `json:"company"`
	URL          *string  `json:"url"`
	Description  *string  `json:"description"`
	Category     *string  `json:"category"`
	Region       *string  `json:"region"`
	DiscoveredAt NullTime `json:"discovered_at"`
	StartupID    *int64   `json:"startup_id"`
}

// InvestorRow is the input of the VC index.
type InvestorRow struct {
	ID        int64
	Name      string
	Investors string
}

// Suggestion is a "please add this company" ticket.
type Suggestion struct {
	Name    string
	Website *string
	Notes   *string
}

// Ticket is a correction or feedback ticket.
type Ticket struct {
	Type        string
	StartupName *string
	StartupID   *int64
	Subject     string
	Details     string
	Website     *string
}

const TicketStatusPending = "pending"

// StartupRef is the id and name of an existing startup.
type StartupRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type RegionCount struct {
	Region *string `json:"region"`
	Count  int64   `json:"count"`
}

type VerticalCount struct {
	Vertical *string `json:"vertical"`
	Count    int64   `json:"count"`
}

type RecentStartup struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Region         *string  `json:"region"`
	Vertical       *string  `json:"vertical"`
	RelevanceScore int      `json:"relevance_score"`
	DiscoveredAt   NullTime `json:"discovered_at"`
}

type FundedStartup struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	FundingAmount string  `json:"funding_amount"`
	FundingValue  float64 `json:"funding_value"`
}

// NullTime scans DATETIME values from either driver. SQLite hands back text
// for computed columns such as MAX(published_at), so strings are parsed too.
type NullTime struct {
	Time  time.Time
	Valid bool
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"2006-01-02",
}

func (nt *NullTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*nt = NullTime{}
		return nil
	case time.Time:
		*nt = NullTime{Time: v, Valid: true}
		return nil
	case []byte:
		return nt.parse(string(v))
	case string:
		return nt.parse(v)
	}
	return fmt.Errorf("cannot scan %T into NullTime", value)
}

func (nt *NullTime) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*nt = NullTime{}
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*nt = NullTime{Time: t, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("unrecognized time format %q", s)
}

func (nt NullTime) Value() (driver.Value, error) {
	if !nt.Valid {
		return nil, nil
	}
	return nt.Time, nil
}

func (nt NullTime) MarshalJSON() ([]byte, error) {
	if !nt.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(nt.Time.UTC())
}

// NewNullTime wraps t; the zero time is treated as NULL.
func NewNullTime(t time.Time) NullTime {
	return NullTime{Time: t, Valid: !t.IsZero()}
}
