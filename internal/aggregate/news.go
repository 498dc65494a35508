package aggregate

import (
	"strings"

	"github.com/ai-startup-tracker/tracker/internal/store"
)

// News maps startups to their content items, newest first.
type News struct {
	byName     map[string][]store.Content
	perStartup int
}

// GroupNews groups items by lower-cased startup name. Items must already be
// ordered newest first; the order within each group is preserved. A
// non-positive perStartup keeps every item.
func GroupNews(items []store.Content, perStartup int) *News {
	n := &News{byName: map[string][]store.Content{}, perStartup: perStartup}
	for _, it := range items {
		if it.StartupName == nil {
			continue
		}
		key := strings.ToLower(*it.StartupName)
		n.byName[key] = append(n.byName[key], it)
	}
	return n
}

// Latest returns up to perStartup items for the named startup. The result
// is never nil.
func (n *News) Latest(name string) []store.Content {
	items := n.byName[strings.ToLower(name)]
	if n.perStartup > 0 && len(items) > n.perStartup {
		items = items[:n.perStartup]
	}
	if items == nil {
		return []store.Content{}
	}
	return items
}
