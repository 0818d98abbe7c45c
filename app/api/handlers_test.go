package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/feedloom/feedloom/app/feed"
	"github.com/feedloom/feedloom/app/fetch"
	"github.com/feedloom/feedloom/app/sites"
)

const listingXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Example Wire</title>
<link>https://wire.example.com</link>
<item>
<title>A story</title>
<link>https://wire.example.com/stories/a-story</link>
<guid>story-a</guid>
<pubDate>Tue, 02 Jan 2024 10:00:00 GMT</pubDate>
<description>Body text</description>
</item>
</channel>
</rss>`

func newTestServer(t *testing.T, apiAccessKey string) http.Handler {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingXML)
	}))
	t.Cleanup(upstream.Close)

	registryFile := filepath.Join(t.TempDir(), "sites.yml")
	content := fmt.Sprintf(`
sites:
  wire_site:
    handler: wire
    host: wire.example.com
    brand: Example Wire
    listing_url: %s/rss.xml
`, upstream.URL)
	if err := os.WriteFile(registryFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write registry file: %s", err)
	}

	client := fetch.NewClient("test-agent", 5*time.Second)
	registry := sites.NewRegistry(registryFile, client, nil)
	if err := registry.Run(); err != nil {
		t.Fatalf("failed to load registry: %s", err)
	}

	return NewServer(NewHandler(registry, "http://feeds.test", "test"), apiAccessKey)
}

func TestGetFeedEndpoint(t *testing.T) {
	server := newTestServer(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/feeds/wire_site", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/feed+json") {
		t.Errorf("expected application/feed+json content type, got %q", ct)
	}
	if w.Header().Get("X-Feed-Items") != "1" {
		t.Errorf("expected X-Feed-Items 1, got %q", w.Header().Get("X-Feed-Items"))
	}

	var result feed.Feed
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode feed: %s", err)
	}
	if result.Version != feed.Version {
		t.Errorf("expected version %q, got %q", feed.Version, result.Version)
	}
	if len(result.Items) != 1 || result.Items[0].Title != "A story" {
		t.Errorf("unexpected items: %+v", result.Items)
	}
}

func TestGetFeedUnknownSite(t *testing.T) {
	server := newTestServer(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/feeds/missing", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestGetFeedMaxQueryParam(t *testing.T) {
	server := newTestServer(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/feeds/wire_site?max=1", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Feed-Items") != "1" {
		t.Errorf("expected 1 item, got %q", w.Header().Get("X-Feed-Items"))
	}
}

func TestGetContentEndpoint(t *testing.T) {
	server := newTestServer(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/content?url=https://wire.example.com/stories/a-story", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var item feed.Item
	if err := json.Unmarshal(w.Body.Bytes(), &item); err != nil {
		t.Fatalf("failed to decode item: %s", err)
	}
	if item.ID != "story-a" {
		t.Errorf("expected item story-a, got %q", item.ID)
	}
}

func TestGetContentMissingURL(t *testing.T) {
	server := newTestServer(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/content", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGetContentUnregisteredHost(t *testing.T) {
	server := newTestServer(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/content?url=https://unknown.example.com/x", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var health map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("failed to decode health: %s", err)
	}
	if health["loaded_sites"] != float64(1) {
		t.Errorf("expected 1 loaded site, got %v", health["loaded_sites"])
	}
}

func TestAPIAuthRequired(t *testing.T) {
	server := newTestServer(t, "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/sites", nil)
	server.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/sites", nil)
	req.Header.Set("X-API-Key", "wrong")
	server.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong key, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/sites", nil)
	req.Header.Set("X-API-Key", "secret")
	server.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with correct key, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/sites", nil)
	req.Header.Set("Authorization", "Bearer secret")
	server.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with bearer token, got %d", w.Code)
	}
}

func TestAPIDisabledWithoutKey(t *testing.T) {
	server := newTestServer(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/sites", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 when API is disabled, got %d", w.Code)
	}
}

func TestAPIListSites(t *testing.T) {
	server := newTestServer(t, "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/sites", nil)
	req.Header.Set("X-API-Key", "secret")
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var payload struct {
		Sites []map[string]interface{} `json:"sites"`
		Total int                      `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode sites list: %s", err)
	}
	if payload.Total != 1 || len(payload.Sites) != 1 {
		t.Fatalf("expected 1 site, got %+v", payload)
	}
	if payload.Sites[0]["name"] != "wire_site" {
		t.Errorf("expected wire_site, got %v", payload.Sites[0]["name"])
	}
}

func TestFaviconReturns204(t *testing.T) {
	server := newTestServer(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/favicon.ico", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
}
