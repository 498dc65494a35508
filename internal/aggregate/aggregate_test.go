package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-startup-tracker/tracker/internal/store"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "d"}, SplitList(" a ,b c,, d ,"))
	assert.Equal(t, []string{}, SplitList(""))
	assert.Equal(t, []string{}, SplitList(" , "))
}

func TestBuildVCIndex_GroupsCaseInsensitively(t *testing.T) {
	rows := []store.InvestorRow{
		{ID: 1, Name: "X", Investors: "Acme, Beta"},
		{ID: 2, Name: "Y", Investors: "acme"},
	}
	vcs := BuildVCIndex(rows)
	require.Len(t, vcs, 2)

	assert.Equal(t, "Acme", vcs[0].Name, "display name is the first occurrence")
	assert.Equal(t, 2, vcs[0].Count)
	assert.Equal(t, []Company{{ID: 1, Name: "X"}, {ID: 2, Name: "Y"}}, vcs[0].Companies)

	assert.Equal(t, "Beta", vcs[1].Name)
	assert.Equal(t, 1, vcs[1].Count)
}

func TestBuildVCIndex_DuplicateWithinStartupCountsOnce(t *testing.T) {
	vcs := BuildVCIndex([]store.InvestorRow{{ID: 1, Name: "X", Investors: "Sequoia, SEQUOIA ,sequoia"}})
	require.Len(t, vcs, 1)
	assert.Equal(t, 1, vcs[0].Count)
	assert.Len(t, vcs[0].Companies, 1)
}

func TestBuildVCIndex_TiesKeepFirstSeenOrder(t *testing.T) {
	vcs := BuildVCIndex([]store.InvestorRow{
		{ID: 1, Name: "X", Investors: "Zeta, Alpha"},
		{ID: 2, Name: "Y", Investors: "Mid, Mid2, Alpha"},
	})
	names := make([]string, len(vcs))
	for i, vc := range vcs {
		names[i] = vc.Name
	}
	assert.Equal(t, []string{"Alpha", "Zeta", "Mid", "Mid2"}, names)
}

func TestBuildVCIndex_Empty(t *testing.T) {
	assert.Equal(t, []VC{}, BuildVCIndex(nil))
	assert.Equal(t, []VC{}, BuildVCIndex([]store.InvestorRow{{ID: 1, Name: "X", Investors: " , "}}))
}

func TestFilterVCs(t *testing.T) {
	vcs := []VC{{Name: "Sequoia Capital"}, {Name: "a16z"}, {Name: "Sequoia China"}}
	assert.Len(t, FilterVCs(vcs, "SEQUOIA"), 2)
	assert.Len(t, FilterVCs(vcs, ""), 3)
	assert.Equal(t, []VC{}, FilterVCs(vcs, "benchmark"))
}

func strp(s string) *string { return &s }

func TestGroupNews(t *testing.T) {
	items := []store.Content{
		{ID: 3, StartupName: strp("Acme"), Title: strp("newest")},
		{ID: 2, StartupName: strp("ACME"), Title: strp("middle")},
		{ID: 9, StartupName: strp("Beta"), Title: strp("beta news")},
		{ID: 1, StartupName: strp("acme"), Title: strp("older")},
		{ID: 0, StartupName: strp("acme"), Title: strp("oldest")},
		{ID: 7, Title: strp("orphan")},
	}
	news := GroupNews(items, 3)

	acme := news.Latest("Acme")
	require.Len(t, acme, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{acme[0].ID, acme[1].ID, acme[2].ID})
	assert.Len(t, news.Latest("beta"), 1)

	missing := news.Latest("Nobody")
	assert.NotNil(t, missing)
	assert.Empty(t, missing)

	assert.Len(t, GroupNews(items, 0).Latest("acme"), 4)
}
