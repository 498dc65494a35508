// Package aggregate turns flat rows into the derived indexes the API serves:
// investors to companies, and startups to their latest news.
package aggregate

import (
	"sort"
	"strings"

	"github.com/ai-startup-tracker/tracker/internal/store"
)

// Company is a startup reference inside a VC entry.
type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// VC is one investor with the startups that list it.
type VC struct {
	Name      string    `json:"name"`
	Count     int       `json:"count"`
	Companies []Company `json:"companies"`
}

// SplitList splits a comma-separated column, trimming entries and dropping
// empty ones. It never returns nil.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// BuildVCIndex groups startups by investor. Names are matched
// case-insensitively and displayed as first seen. The result is ordered by
// company count descending; ties keep first-seen order.
func BuildVCIndex(rows []store.InvestorRow) []VC {
	index := map[string]int{}
	vcs := []VC{}
	for _, row := range rows {
		seen := map[string]bool{}
		for _, name := range SplitList(row.Investors) {
			key := strings.ToLower(name)
			if seen[key] {
				continue
			}
			seen[key] = true

			i, ok := index[key]
			if !ok {
				i = len(vcs)
				index[key] = i
				vcs = append(vcs, VC{Name: name})
			}
			vcs[i].Companies = append(vcs[i].Companies, Company{ID: row.ID, Name: row.Name})
			vcs[i].Count++
		}
	}
	sort.SliceStable(vcs, func(a, b int) bool { return vcs[a].Count > vcs[b].Count })
	return vcs
}

// FilterVCs keeps investors whose name contains search, case-insensitively.
func FilterVCs(vcs []VC, search string) []VC {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return vcs
	}
	out := []VC{}
	for _, vc := range vcs {
		if strings.Contains(strings.ToLower(vc.Name), search) {
			out = append(out, vc)
		}
	}
	return out
}
