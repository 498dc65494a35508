package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-startup-tracker/tracker/internal/cache"
	"github.com/ai-startup-tracker/tracker/internal/core"
	"github.com/ai-startup-tracker/tracker/internal/store/storetest"
)

func newTestServer(t *testing.T) (*httptest.Server, *storetest.DB) {
	t.Helper()
	s, db := storetest.New(t)
	discovered := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	storetest.Insert(t, db, "ai_startups", map[string]any{
		"name": "Acme & Sons", "website": "acme.example", "region": "US", "vertical": "Agents",
		"investors": "Sequoia, Acme Ventures", "relevance_score": 8, "discovered_at": discovered,
	})
	storetest.Insert(t, db, "ai_startups", map[string]any{
		"name": "Beta", "region": "EU", "investors": "acme ventures", "relevance_score": 4,
		"discovered_at": discovered.Add(-time.Hour),
	})
	storetest.Insert(t, db, "company_content", map[string]any{
		"startup_name": "Acme & Sons", "title": `Launch <v2> "today"`, "url": "https://n.example/?a=1&b=2",
		"summary": "big & bold", "published_at": discovered,
	})
	db.Reset()

	h := NewAPIHandler(
		core.NewDirectoryService(s, cache.New(time.Hour)),
		core.NewFeedService(s, "https://tracker.example"),
		core.NewTicketService(s),
	)
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv, db
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func post(t *testing.T, srv *httptest.Server, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := get(t, srv, "/api/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv, _ := newTestServer(t)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestListStartups(t *testing.T) {
	srv, db := newTestServer(t)
	resp, body := get(t, srv, "/api/startups?limit=1&page=2&sort=bogus")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var page struct {
		Data []struct {
			Name         string  `json:"name"`
			Vertical     *string `json:"vertical"`
			LatestNewsAt *string `json:"latest_news_at"`
		} `json:"data"`
		Total int `json:"total"`
		Page  int `json:"page"`
		Limit int `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 1, page.Limit)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Beta", page.Data[0].Name)
	assert.Nil(t, page.Data[0].Vertical)
	assert.Nil(t, page.Data[0].LatestNewsAt)

	db.Reset()
	resp, _ = get(t, srv, "/api/startups/?page=2&sort=discovered_at&limit=1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, db.Queries(), "trailing slash and explicit defaults share the cache entry")
}

func TestGetStartup(t *testing.T) {
	srv, db := newTestServer(t)

	resp, body := get(t, srv, "/api/startups/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail map[string]any
	require.NoError(t, json.Unmarshal(body, &detail))
	assert.Equal(t, "Acme & Sons", detail["name"])
	assert.Len(t, detail["content"], 1)
	assert.Equal(t, []any{}, detail["persons"])

	for _, id := range []string{"999", "abc"} {
		db.Reset()
		resp, body = get(t, srv, "/api/startups/"+id)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, id)
		assert.JSONEq(t, `{"error":"Not found"}`, string(body))
		assert.LessOrEqual(t, db.Queries(), int64(1), id)
	}
}

func TestListVCs(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := get(t, srv, "/api/vcs")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Data []struct {
			Name      string `json:"name"`
			Count     int    `json:"count"`
			Companies []struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"companies"`
		} `json:"data"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, "Acme Ventures", list.Data[0].Name)
	assert.Equal(t, 2, list.Data[0].Count)
	assert.Equal(t, "Beta", list.Data[0].Companies[1].Name)
}

func TestStatsAndPeopleAndProducts(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv, "/api/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 2.0, stats["totalStartups"])
	assert.Equal(t, 6.0, stats["avgRelevance"])
	assert.Equal(t, []any{}, stats["topFunded"])

	resp, body = get(t, srv, "/api/people")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"data":[],"total":0}`, string(body))

	resp, body = get(t, srv, "/api/products")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"data":[],"categories":[]}`, string(body))
}

func TestRSS(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := get(t, srv, "/api/rss?region=US")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/rss+xml; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "public, s-maxage=3600, stale-while-revalidate=7200", resp.Header.Get("Cache-Control"))

	f, err := gofeed.NewParser().ParseString(string(body))
	require.NoError(t, err)
	require.Len(t, f.Items, 1)
	assert.Equal(t, "Acme & Sons", f.Items[0].Title)
	assert.Equal(t, "https://acme.example", f.Items[0].Link)
	assert.Contains(t, string(body), `Launch &lt;v2&gt; &quot;today&quot;`)
}

func TestSuggest(t *testing.T) {
	srv, db := newTestServer(t)

	resp, out := post(t, srv, "/api/suggest", `{"name":"acme & sons"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["exists"])
	assert.Zero(t, storetest.Count(t, db, "startup_suggestions"))

	resp, out = post(t, srv, "/api/suggest", `{"name":"Newco","website":"newco.ai"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["success"])

	resp, out = post(t, srv, "/api/suggest", `{"name":"newco"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["duplicate"])

	resp, out = post(t, srv, "/api/suggest", `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Company name is required", out["error"])

	resp, _ = post(t, srv, "/api/suggest", `{"type":"feedback","subject":"Hi","details":"Great list"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, storetest.Count(t, db, "feedback_tickets"))

	resp, out = post(t, srv, "/api/suggest", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request body", out["error"])
}

func TestVerify(t *testing.T) {
	srv, db := newTestServer(t)

	resp, out := post(t, srv, "/api/verify", `{"startup_id":"2","startup_name":"Beta"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["success"])

	resp, _ = post(t, srv, "/api/verify", `{"startup_id":1}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, storetest.Count(t, db, "feedback_tickets"))

	for _, body := range []string{`{}`, `{"startup_id":""}`, `{"startup_id":null}`} {
		resp, out = post(t, srv, "/api/verify", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Equal(t, "Missing startup_id", out["error"], body)
	}
}

func TestDatabaseFailureIsGeneric500(t *testing.T) {
	srv, db := newTestServer(t)
	require.NoError(t, db.DB.Close())

	for path, msg := range map[string]string{
		"/api/startups": "Failed to fetch startups",
		"/api/people":   "Failed to fetch people",
		"/api/vcs":      "Failed to fetch VCs",
		"/api/stats":    "Failed to fetch stats",
		"/api/rss":      "Failed to generate feed",
	} {
		resp, body := get(t, srv, path)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, path)
		assert.JSONEq(t, `{"error":"`+msg+`"}`, string(body), path)
	}
}
