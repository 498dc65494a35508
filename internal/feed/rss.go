// Package feed renders the startup RSS 2.0 feed.
package feed

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ai-startup-tracker/tracker/internal/query"
	"github.com/ai-startup-tracker/tracker/internal/store"
)

const (
	ContentType  = "application/rss+xml; charset=utf-8"
	CacheControl = "public, s-maxage=3600, stale-while-revalidate=7200"

	// NewsPerItem is how many news entries each item embeds.
	NewsPerItem = 3
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML escapes the five reserved XML characters.
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// Item is one startup with its most recent news.
type Item struct {
	Startup store.Startup
	News    []store.Content
}

type Channel struct {
	SiteURL   string
	Filter    string
	BuildTime time.Time
	Items     []Item
}

// FilterDescription summarizes the active filters, or "all" when none are set.
func FilterDescription(p query.Params) string {
	var parts []string
	if p.Region != "" {
		parts = append(parts, "region="+p.Region)
	}
	if p.Vertical != "" {
		parts = append(parts, "vertical="+p.Vertical)
	}
	if p.Stage != "" {
		parts = append(parts, "stage="+p.Stage)
	}
	if p.MinRelevance != nil {
		parts = append(parts, "relevance>="+strconv.FormatFloat(*p.MinRelevance, 'f', -1, 64))
	}
	if p.NeedsDatabase {
		parts = append(parts, "needs_database")
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ", ")
}

func rfc1123(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Render writes the complete feed document.
func Render(w io.Writer, ch Channel) error {
	bw := bufio.NewWriter(w)
	site := ch.SiteURL
	filter := EscapeXML(ch.Filter)
	now := rfc1123(ch.BuildTime)

	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>AI Startup Tracker — %[2]s</title>
    <link>%[1]s</link>
    <description>AI startups discovery feed. Filter: %[2]s. Updated every 6 hours. Use for investment research, sales pipeline, and market intelligence.</description>
    <language>en-us</language>
    <lastBuildDate>%[3]s</lastBuildDate>
    <atom:link href="%[1]s/api/rss" rel="self" type="application/rss+xml"/>
    <ttl>360</ttl>
    <docs>
Subscribe to this RSS feed for regular updates to the AI startup list.
Each item includes: company URL, region, vertical, stage, funding, investors, relevance score, and latest news.
Consumers can parse items and conduct deep research per company as needed.

Query parameters for filtering:
- region: country code (US, CN, SG, IN, KR, JP, etc.)
- vertical: AI vertical (agents, llm, coding, healthcare, etc.)
- stage: funding stage (Seed, Series A, Series B, Growth, Public, etc.)
- min_relevance: minimum relevance score 1-10
- needs_database: true/false
- sort: updated, discovered, relevance, name, latest_news
- limit: max items (default 50, max 200)

Examples:
- %[1]s/api/rss?region=SG — Singapore startups
- %[1]s/api/rss?min_relevance=8 — High relevance for TiDB
- %[1]s/api/rss?needs_database=true&amp;stage=Series%%20A — DB-needing Series A companies
- %[1]s/api/rss?vertical=agents&amp;region=US — US AI agent startups
    </docs>
`, site, filter, now)

	for i, it := range ch.Items {
		if i > 0 {
			bw.WriteString("\n")
		}
		writeItem(bw, site, now, it)
	}
	bw.WriteString("\n  </channel>\n</rss>")
	return bw.Flush()
}

func writeItem(w *bufio.Writer, site, now string, it Item) {
	s := it.Startup
	permalink := fmt.Sprintf("%s/startups/%d", site, s.ID)

	link := permalink
	if website := deref(s.Website); website != "" {
		link = EscapeXML(website)
		if !strings.HasPrefix(website, "http") {
			link = "https://" + link
		}
	}

	pubDate := now
	switch {
	case s.UpdatedAt.Valid:
		pubDate = rfc1123(s.UpdatedAt.Time)
	case s.DiscoveredAt.Valid:
		pubDate = rfc1123(s.DiscoveredAt.Time)
	}

	category := deref(s.Vertical)
	if category == "" {
		category = "AI"
	}

	fmt.Fprintf(w, `    <item>
      <title>%s</title>
      <link>%s</link>
      <guid isPermaLink="false">%s</guid>
      <pubDate>%s</pubDate>
      <category>%s</category>
      <description>%s

%s%s</description>
      <source url="%s/api/rss">AI Startup Tracker</source>
    </item>`,
		EscapeXML(s.Name), link, permalink, pubDate, EscapeXML(category),
		EscapeXML(deref(s.Product)), EscapeXML(metaLine(s)), newsSection(it.News), site)
}

// metaLine is the "Region: US | Vertical: ..." summary of an item.
func metaLine(s store.Startup) string {
	var parts []string
	add := func(label string, v *string) {
		if x := deref(v); x != "" {
			parts = append(parts, label+": "+x)
		}
	}
	add("Region", s.Region)
	add("Vertical", s.Vertical)
	add("Stage", s.Stage)
	add("Funding", s.FundingAmount)
	add("Investors", s.Investors)
	parts = append(parts, fmt.Sprintf("Relevance: %d/10", s.RelevanceScore))
	if s.NeedsDatabase {
		parts = append(parts, "Needs Database: Yes")
	}
	add("Source", s.Source)
	return strings.Join(parts, " | ")
}

// newsSection renders the news list as pre-escaped HTML inside the
// description text.
func newsSection(news []store.Content) string {
	if len(news) == 0 {
		return ""
	}
	if len(news) > NewsPerItem {
		news = news[:NewsPerItem]
	}
	var b strings.Builder
	b.WriteString("\n&lt;h3&gt;Latest News&lt;/h3&gt;&lt;ul&gt;")
	for _, n := range news {
		fmt.Fprintf(&b, `&lt;li&gt;&lt;a href="%s"&gt;%s&lt;/a&gt; — %s&lt;/li&gt;`,
			EscapeXML(deref(n.URL)), EscapeXML(deref(n.Title)), EscapeXML(deref(n.Summary)))
	}
	b.WriteString("&lt;/ul&gt;")
	return b.String()
}
