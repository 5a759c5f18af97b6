package news

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/homedash/homedash/app/fetch"
)

// stubFetcher serves canned responses per URL and counts fetches.
type stubFetcher struct {
	mu        sync.Mutex
	responses map[string]fetch.Result
	calls     map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		responses: make(map[string]fetch.Result),
		calls:     make(map[string]int),
	}
}

func (f *stubFetcher) set(url string, res fetch.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[url] = res
}

func (f *stubFetcher) Fetch(_ context.Context, url string) fetch.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if res, ok := f.responses[url]; ok {
		return res
	}
	return fetch.Result{Body: "connection refused", StatusCode: 0, Success: false}
}

func (f *stubFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func rssFeed(title string, items ...string) string {
	body := `<rss version="2.0"><channel><title>` + title + `</title>`
	for _, item := range items {
		body += item
	}
	return body + `</channel></rss>`
}

func rssItemXML(title, link, pubDate string) string {
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><pubDate>%s</pubDate></item>`,
		title, link, pubDate)
}

func okResult(body string) fetch.Result {
	return fetch.Result{Body: body, StatusCode: 200, Success: true}
}

func newTestService(fetcher Fetcher, feeds ...string) *Service {
	if feeds == nil {
		feeds = []string{}
	}
	return NewService(fetcher, Options{DefaultFeeds: feeds})
}

func TestGetLatestNews(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://a.example.com/rss", okResult(rssFeed("Feed A",
		rssItemXML("Newest", "https://a.example.com/1", "Mon, 03 Jul 2023 12:00:00 GMT"),
		rssItemXML("Oldest", "https://a.example.com/2", "Mon, 03 Jul 2023 08:00:00 GMT"),
	)))
	fetcher.set("https://b.example.com/rss", okResult(rssFeed("Feed B",
		rssItemXML("Middle", "https://b.example.com/1", "Mon, 03 Jul 2023 10:00:00 GMT"),
	)))

	svc := newTestService(fetcher, "https://a.example.com/rss", "https://b.example.com/rss")

	articles := svc.GetLatestNews(context.Background(), false)

	if len(articles) != 3 {
		t.Fatalf("Expected 3 articles, got: %d", len(articles))
	}

	// Newest first across feeds
	if articles[0].Title != "Newest" || articles[1].Title != "Middle" || articles[2].Title != "Oldest" {
		t.Errorf("Expected Newest/Middle/Oldest, got: %s/%s/%s",
			articles[0].Title, articles[1].Title, articles[2].Title)
	}
}

func TestGetLatestNewsUsesCache(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://a.example.com/rss", okResult(rssFeed("Feed A",
		rssItemXML("Item", "https://a.example.com/1", "Mon, 03 Jul 2023 12:00:00 GMT"),
	)))

	svc := newTestService(fetcher, "https://a.example.com/rss")

	svc.GetLatestNews(context.Background(), false)
	svc.GetLatestNews(context.Background(), false)

	if got := fetcher.callCount("https://a.example.com/rss"); got != 1 {
		t.Errorf("Expected 1 fetch with a warm cache, got: %d", got)
	}
}

func TestGetLatestNewsForceRefresh(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://a.example.com/rss", okResult(rssFeed("Feed A",
		rssItemXML("Item", "https://a.example.com/1", "Mon, 03 Jul 2023 12:00:00 GMT"),
	)))

	svc := newTestService(fetcher, "https://a.example.com/rss")

	svc.GetLatestNews(context.Background(), false)
	svc.GetLatestNews(context.Background(), true)

	if got := fetcher.callCount("https://a.example.com/rss"); got != 2 {
		t.Errorf("Expected 2 fetches with force refresh, got: %d", got)
	}
}

func TestGetLatestNewsCacheExpiry(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://a.example.com/rss", okResult(rssFeed("Feed A",
		rssItemXML("Item", "https://a.example.com/1", "Mon, 03 Jul 2023 12:00:00 GMT"),
	)))

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	current := base

	svc := newTestService(fetcher, "https://a.example.com/rss")
	svc.SetNowFunc(func() time.Time { return current })

	svc.GetLatestNews(context.Background(), false)

	current = base.Add(DefaultCacheTTL + time.Second)
	svc.GetLatestNews(context.Background(), false)

	if got := fetcher.callCount("https://a.example.com/rss"); got != 2 {
		t.Errorf("Expected refetch after TTL expiry, got: %d fetches", got)
	}
}

func TestGetLatestNewsDedupAcrossFeeds(t *testing.T) {
	// The same story syndicated by both feeds
	shared := rssItemXML("Shared Story", "https://news.example.com/story", "Mon, 03 Jul 2023 12:00:00 GMT")

	fetcher := newStubFetcher()
	fetcher.set("https://a.example.com/rss", okResult(rssFeed("Feed A", shared)))
	fetcher.set("https://b.example.com/rss", okResult(rssFeed("Feed B", shared)))

	svc := newTestService(fetcher, "https://a.example.com/rss", "https://b.example.com/rss")

	articles := svc.GetLatestNews(context.Background(), false)

	if len(articles) != 1 {
		t.Fatalf("Expected 1 article after dedup, got: %d", len(articles))
	}
	// The earlier-registered feed wins
	if articles[0].Source != "Feed A" {
		t.Errorf("Expected source 'Feed A', got: %s", articles[0].Source)
	}
}

func TestGetLatestNewsGracefulDegradation(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://ok.example.com/rss", okResult(rssFeed("OK Feed",
		rssItemXML("Good Item", "https://ok.example.com/1", "Mon, 03 Jul 2023 12:00:00 GMT"),
	)))
	fetcher.set("https://down.example.com/rss", fetch.Result{Body: "", StatusCode: 500, Success: true})
	fetcher.set("https://broken.example.com/rss", okResult(`<rss version="2.0"><channel><title>Broken`))
	// unreachable.example.com gets the default transport failure

	svc := newTestService(fetcher,
		"https://ok.example.com/rss",
		"https://down.example.com/rss",
		"https://broken.example.com/rss",
		"https://unreachable.example.com/rss",
	)

	articles := svc.GetLatestNews(context.Background(), false)

	if len(articles) != 1 {
		t.Fatalf("Expected 1 article from the healthy feed, got: %d", len(articles))
	}
	if articles[0].Title != "Good Item" {
		t.Errorf("Expected 'Good Item', got: %s", articles[0].Title)
	}

	errorsByURL := make(map[string]string)
	for _, feed := range svc.GetFeeds() {
		errorsByURL[feed.URL] = feed.LastError
	}

	if errorsByURL["https://ok.example.com/rss"] != "" {
		t.Errorf("Expected no error on healthy feed, got: %q", errorsByURL["https://ok.example.com/rss"])
	}
	if errorsByURL["https://down.example.com/rss"] != "HTTP error: 500" {
		t.Errorf("Expected HTTP error recorded, got: %q", errorsByURL["https://down.example.com/rss"])
	}
	if errorsByURL["https://broken.example.com/rss"] != "Failed to parse feed content" {
		t.Errorf("Expected parse error recorded, got: %q", errorsByURL["https://broken.example.com/rss"])
	}
	if errorsByURL["https://unreachable.example.com/rss"] == "" {
		t.Error("Expected transport error recorded on unreachable feed")
	}
}

func TestGetLatestNewsEmptyFeed(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://empty.example.com/rss", okResult(rssFeed("Empty Feed")))

	svc := newTestService(fetcher, "https://empty.example.com/rss")

	articles := svc.GetLatestNews(context.Background(), false)
	if len(articles) != 0 {
		t.Fatalf("Expected 0 articles, got: %d", len(articles))
	}

	feed := svc.GetFeeds()[0]
	if feed.LastError != "Feed contains no articles" {
		t.Errorf("Expected empty-feed error, got: %q", feed.LastError)
	}

	// Empty results are not cached
	svc.GetLatestNews(context.Background(), false)
	if got := fetcher.callCount("https://empty.example.com/rss"); got != 2 {
		t.Errorf("Expected empty feed to be refetched, got: %d fetches", got)
	}
}

func TestGetLatestNewsSkipsInactiveFeeds(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://a.example.com/rss", okResult(rssFeed("Feed A",
		rssItemXML("Item", "https://a.example.com/1", "Mon, 03 Jul 2023 12:00:00 GMT"),
	)))

	svc := newTestService(fetcher, "https://a.example.com/rss")
	svc.SetFeedActive("https://a.example.com/rss", false)

	articles := svc.GetLatestNews(context.Background(), false)

	if len(articles) != 0 {
		t.Errorf("Expected 0 articles from inactive feed, got: %d", len(articles))
	}
	if got := fetcher.callCount("https://a.example.com/rss"); got != 0 {
		t.Errorf("Expected inactive feed not to be fetched, got: %d fetches", got)
	}
}

func TestGetLatestNewsGlobalCap(t *testing.T) {
	var items []string
	for i := 0; i < 120; i++ {
		items = append(items, rssItemXML(
			fmt.Sprintf("Item %03d", i),
			fmt.Sprintf("https://a.example.com/%d", i),
			"Mon, 03 Jul 2023 12:00:00 GMT",
		))
	}

	fetcher := newStubFetcher()
	fetcher.set("https://a.example.com/rss", okResult(rssFeed("Big Feed", items...)))

	svc := NewService(fetcher, Options{
		DefaultFeeds:       []string{"https://a.example.com/rss"},
		MaxArticlesPerFeed: 200,
	})

	articles := svc.GetLatestNews(context.Background(), false)

	if len(articles) != GlobalArticleCap {
		t.Errorf("Expected %d articles, got: %d", GlobalArticleCap, len(articles))
	}
}

func TestAddFeed(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://new.example.com/rss", okResult(rssFeed("New Feed",
		rssItemXML("Item", "https://new.example.com/1", "Mon, 03 Jul 2023 12:00:00 GMT"),
	)))

	svc := newTestService(fetcher)

	if !svc.AddFeed(context.Background(), "https://new.example.com/rss") {
		t.Fatal("Expected add to succeed")
	}

	feeds := svc.GetFeeds()
	if len(feeds) != 1 {
		t.Fatalf("Expected 1 feed, got: %d", len(feeds))
	}
	if feeds[0].Title != "New Feed" {
		t.Errorf("Expected metadata extracted during validation, got: %q", feeds[0].Title)
	}
	if !feeds[0].IsActive {
		t.Error("Expected new feed to be active")
	}
}

func TestAddFeedRejections(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://ok.example.com/rss", okResult(rssFeed("OK")))
	fetcher.set("https://notfeed.example.com", okResult("<html><body>hi</body></html>"))
	fetcher.set("https://down.example.com/rss", fetch.Result{StatusCode: 404, Success: true})

	svc := newTestService(fetcher, "https://ok.example.com/rss")

	if svc.AddFeed(context.Background(), "") {
		t.Error("Expected empty URL to be rejected")
	}
	if svc.AddFeed(context.Background(), "https://ok.example.com/rss") {
		t.Error("Expected duplicate URL to be rejected")
	}
	if svc.AddFeed(context.Background(), "https://notfeed.example.com") {
		t.Error("Expected non-feed content to be rejected")
	}
	if svc.AddFeed(context.Background(), "https://down.example.com/rss") {
		t.Error("Expected HTTP 404 to be rejected")
	}
	if svc.AddFeed(context.Background(), "https://unreachable.example.com/rss") {
		t.Error("Expected unreachable URL to be rejected")
	}

	if got := len(svc.GetFeeds()); got != 1 {
		t.Errorf("Expected registry unchanged with 1 feed, got: %d", got)
	}
}

func TestRemoveFeedPurgesCache(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://a.example.com/rss", okResult(rssFeed("Feed A",
		rssItemXML("Item", "https://a.example.com/1", "Mon, 03 Jul 2023 12:00:00 GMT"),
	)))

	svc := newTestService(fetcher, "https://a.example.com/rss")

	svc.GetLatestNews(context.Background(), false)
	if svc.Status().CacheEntries != 1 {
		t.Fatalf("Expected 1 cache entry, got: %d", svc.Status().CacheEntries)
	}

	if !svc.RemoveFeed("https://a.example.com/rss") {
		t.Fatal("Expected remove to succeed")
	}
	if svc.Status().CacheEntries != 0 {
		t.Errorf("Expected cache purged, got: %d entries", svc.Status().CacheEntries)
	}
	if svc.RemoveFeed("https://a.example.com/rss") {
		t.Error("Expected second remove to fail")
	}
}

func TestRefreshAllFeeds(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://a.example.com/rss", okResult(rssFeed("Feed A",
		rssItemXML("A", "https://a.example.com/1", "Mon, 03 Jul 2023 12:00:00 GMT"),
	)))
	fetcher.set("https://b.example.com/rss", okResult(rssFeed("Feed B",
		rssItemXML("B", "https://b.example.com/1", "Mon, 03 Jul 2023 12:00:00 GMT"),
	)))
	fetcher.set("https://bad.example.com/rss", fetch.Result{StatusCode: 500, Success: true})

	svc := newTestService(fetcher,
		"https://a.example.com/rss",
		"https://b.example.com/rss",
		"https://bad.example.com/rss",
	)

	if got := svc.RefreshAllFeeds(context.Background()); got != 2 {
		t.Errorf("Expected 2 feeds refreshed, got: %d", got)
	}
}

func TestClearCache(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://a.example.com/rss", okResult(rssFeed("Feed A",
		rssItemXML("Item", "https://a.example.com/1", "Mon, 03 Jul 2023 12:00:00 GMT"),
	)))

	svc := newTestService(fetcher, "https://a.example.com/rss")

	svc.GetLatestNews(context.Background(), false)
	svc.ClearCache()
	svc.GetLatestNews(context.Background(), false)

	if got := fetcher.callCount("https://a.example.com/rss"); got != 2 {
		t.Errorf("Expected refetch after cache clear, got: %d fetches", got)
	}
}

func TestSetCacheTTLClampedToFloor(t *testing.T) {
	svc := newTestService(newStubFetcher())

	svc.SetCacheTTL(10 * time.Second)

	if got := svc.Status().CacheTTLSeconds; got != int(MinCacheTTL/time.Second) {
		t.Errorf("Expected TTL clamped to %d, got: %d", int(MinCacheTTL/time.Second), got)
	}
}

func TestSetMaxArticlesPerFeed(t *testing.T) {
	svc := newTestService(newStubFetcher())

	if !svc.SetMaxArticlesPerFeed(10) {
		t.Error("Expected valid cap to be accepted")
	}
	if svc.SetMaxArticlesPerFeed(0) {
		t.Error("Expected cap below minimum to be rejected")
	}
	if svc.SetMaxArticlesPerFeed(201) {
		t.Error("Expected cap above maximum to be rejected")
	}
	if got := svc.Status().MaxArticlesPerFeed; got != 10 {
		t.Errorf("Expected cap 10, got: %d", got)
	}
}

func TestStatus(t *testing.T) {
	svc := NewService(newStubFetcher(), Options{
		DefaultFeeds: []string{"https://a.example.com/rss", "https://b.example.com/rss"},
	})
	svc.SetFeedActive("https://b.example.com/rss", false)

	status := svc.Status()

	if status.Service != "news" {
		t.Errorf("Expected service 'news', got: %s", status.Service)
	}
	if !status.Initialized {
		t.Error("Expected initialized true")
	}
	if status.TotalFeeds != 2 {
		t.Errorf("Expected 2 total feeds, got: %d", status.TotalFeeds)
	}
	if status.ActiveFeeds != 1 {
		t.Errorf("Expected 1 active feed, got: %d", status.ActiveFeeds)
	}
	if status.CacheTTLSeconds != int(DefaultCacheTTL/time.Second) {
		t.Errorf("Expected default TTL, got: %d", status.CacheTTLSeconds)
	}
}

func TestSetConfig(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://new.example.com/rss", okResult(rssFeed("New Feed",
		rssItemXML("Item", "https://new.example.com/1", "Mon, 03 Jul 2023 12:00:00 GMT"),
	)))

	svc := newTestService(fetcher)

	blob := []byte(`{"feeds": ["https://new.example.com/rss"], "cache_ttl": 900}`)
	if err := svc.SetConfig(context.Background(), blob); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if got := len(svc.GetFeeds()); got != 1 {
		t.Errorf("Expected 1 feed, got: %d", got)
	}
	if got := svc.Status().CacheTTLSeconds; got != 900 {
		t.Errorf("Expected TTL 900, got: %d", got)
	}

	if err := svc.SetConfig(context.Background(), []byte("not json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}
