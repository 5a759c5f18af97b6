package news

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/homedash/homedash/app/cache"
	"github.com/homedash/homedash/app/fetch"
)

const (
	// GlobalArticleCap bounds the size of one aggregation response; the
	// per-feed cap independently bounds parse cost.
	GlobalArticleCap = 100

	DefaultCacheTTL = 1800 * time.Second
	MinCacheTTL     = 300 * time.Second

	defaultWorkerCount = 5
)

// DefaultFeeds seed the registry when no feeds file is configured.
var DefaultFeeds = []string{
	"https://feeds.reuters.com/reuters/topNews",
	"https://rss.cnn.com/rss/edition.rss",
}

// Fetcher is the HTTP GET capability the aggregator consumes. It is satisfied
// by fetch.Client and swappable for a test double.
type Fetcher interface {
	Fetch(ctx context.Context, url string) fetch.Result
}

type feedStatus int

const (
	feedStatusOK feedStatus = iota
	feedStatusEmpty
	feedStatusError
)

// feedResult is the typed outcome of one per-feed fetch+parse pass, so the
// aggregator can tell "zero items" from "parse failed" instead of swallowing
// the difference.
type feedResult struct {
	status   feedStatus
	articles []Article
	reason   string
}

// Options configures a Service at construction time.
type Options struct {
	CacheTTL           time.Duration
	MaxArticlesPerFeed int
	WorkerCount        int
	DefaultFeeds       []string
}

// Service aggregates articles across all active feeds: per feed it consults
// the response cache or fetches, detects, parses and caches, then merges,
// deduplicates, sorts newest-first and truncates to the global cap. One bad
// feed never aborts aggregation of the others.
type Service struct {
	fetcher  Fetcher
	registry *Registry
	cache    *cache.Cache[[]Article]

	mu          sync.Mutex
	maxPerFeed  int
	workerCount int

	now func() time.Time
}

func NewService(fetcher Fetcher, opts Options) *Service {
	ttl := opts.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	if ttl < MinCacheTTL {
		ttl = MinCacheTTL
	}

	maxPerFeed := opts.MaxArticlesPerFeed
	if maxPerFeed < MinArticlesPerFeed || maxPerFeed > MaxArticlesPerFeed {
		maxPerFeed = DefaultMaxArticlesPerFeed
	}

	workerCount := opts.WorkerCount
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}

	s := &Service{
		fetcher:     fetcher,
		registry:    NewRegistry(),
		cache:       cache.New[[]Article](ttl),
		maxPerFeed:  maxPerFeed,
		workerCount: workerCount,
		now:         time.Now,
	}

	seeds := opts.DefaultFeeds
	if seeds == nil {
		seeds = DefaultFeeds
	}
	s.registry.Seed(seeds)

	return s
}

// GetLatestNews runs one aggregation pass over all active feeds. With
// forceRefresh the per-feed cache is bypassed (entries are overwritten on
// success, kept on failure).
func (s *Service) GetLatestNews(ctx context.Context, forceRefresh bool) []Article {
	feeds := s.registry.Snapshot()

	results := make([]feedResult, len(feeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.getWorkerCount())

	for i, feed := range feeds {
		if !feed.IsActive {
			continue
		}
		g.Go(func() error {
			results[i] = s.collectFeed(gctx, feed, forceRefresh)
			return nil
		})
	}
	g.Wait()

	var combined []Article
	for _, res := range results {
		combined = append(combined, res.articles...)
	}

	combined = Dedupe(combined)

	// stable sort keeps input order for equal timestamps
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].PublishedDate.After(combined[j].PublishedDate)
	})

	if len(combined) > GlobalArticleCap {
		combined = combined[:GlobalArticleCap]
	}

	return combined
}

// collectFeed resolves one feed's articles from cache or network. Failures
// are recorded on the feed and leave any prior cache entry untouched.
func (s *Service) collectFeed(ctx context.Context, feed Feed, forceRefresh bool) feedResult {
	key := cacheKey(feed.URL)

	if !forceRefresh {
		if articles, _, ok := s.cache.Get(key); ok {
			return feedResult{status: feedStatusOK, articles: cloneArticles(articles)}
		}
	}

	s.registry.RecordAttempt(feed.URL, s.now())

	res := s.fetcher.Fetch(ctx, feed.URL)
	if !res.Success {
		s.registry.RecordError(feed.URL, res.Body)
		slog.Warn("Feed fetch failed", "feed", feed.URL, "error", res.Body)
		return feedResult{status: feedStatusError, reason: res.Body}
	}
	if res.StatusCode != http.StatusOK {
		reason := fmt.Sprintf("HTTP error: %d", res.StatusCode)
		s.registry.RecordError(feed.URL, reason)
		slog.Warn("Feed fetch failed", "feed", feed.URL, "status", res.StatusCode)
		return feedResult{status: feedStatusError, reason: reason}
	}

	feedType := DetectFeedType(res.Body)
	info, articles, err := NewParser(s.getMaxPerFeed()).Run(res.Body, feed, feedType)
	if err != nil {
		reason := "Failed to parse feed content"
		s.registry.RecordError(feed.URL, reason)
		slog.Warn("Feed parse failed", "feed", feed.URL, "type", feedType.String(), "error", err)
		return feedResult{status: feedStatusError, reason: reason}
	}

	if len(articles) == 0 {
		// Valid XML with zero items is not cached: the feed is re-fetched on
		// the next pass rather than negatively cached.
		reason := "Feed contains no articles"
		s.registry.RecordError(feed.URL, reason)
		slog.Debug("Feed empty", "feed", feed.URL, "type", feedType.String())
		return feedResult{status: feedStatusEmpty, reason: reason}
	}

	s.registry.RecordSuccess(feed.URL, info, s.now())
	s.cache.Set(key, articles)

	slog.Debug("Feed refreshed", "feed", feed.URL, "type", feedType.String(), "articles", len(articles))

	return feedResult{status: feedStatusOK, articles: cloneArticles(articles)}
}

// AddFeed validates a feed by round-tripping through the fetcher and detector
// before registering it. It returns false on a duplicate URL, an unreachable
// source or an unrecognized feed type; no partial registry mutation happens.
func (s *Service) AddFeed(ctx context.Context, url string) bool {
	if url == "" || s.registry.Contains(url) {
		return false
	}

	res := s.fetcher.Fetch(ctx, url)
	if !res.Success || res.StatusCode != http.StatusOK {
		slog.Warn("Feed validation fetch failed", "feed", url, "status", res.StatusCode)
		return false
	}

	feedType := DetectFeedType(res.Body)
	if feedType == FeedTypeUnknown {
		slog.Warn("Feed validation failed: unrecognized feed type", "feed", url)
		return false
	}

	feed := Feed{URL: url, IsActive: true}
	if info, _, err := NewParser(s.getMaxPerFeed()).Run(res.Body, feed, feedType); err == nil && info != nil {
		feed.Title = info.Title
		feed.Description = info.Description
	}

	if !s.registry.Add(feed) {
		return false
	}

	slog.Info("Feed added", "feed", url, "type", feedType.String())
	return true
}

// RemoveFeed drops the feed and purges its cache entry. Registry and cache
// mutation are not transactional; a stale entry for a removed feed is never
// looked up again.
func (s *Service) RemoveFeed(url string) bool {
	if !s.registry.Remove(url) {
		return false
	}

	s.cache.Delete(cacheKey(url))
	slog.Info("Feed removed", "feed", url)
	return true
}

// GetFeeds returns the configured feeds in insertion order.
func (s *Service) GetFeeds() []Feed {
	return s.registry.Snapshot()
}

// SetFeedActive toggles a feed's activity flag.
func (s *Service) SetFeedActive(url string, active bool) bool {
	return s.registry.SetActive(url, active)
}

// RefreshAllFeeds force-refreshes every active feed, returning how many were
// updated successfully.
func (s *Service) RefreshAllFeeds(ctx context.Context) int {
	feeds := s.registry.Snapshot()

	var (
		mu      sync.Mutex
		updated int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.getWorkerCount())

	for _, feed := range feeds {
		if !feed.IsActive {
			continue
		}
		g.Go(func() error {
			if res := s.collectFeed(gctx, feed, true); res.status == feedStatusOK {
				mu.Lock()
				updated++
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	return updated
}

// ClearCache drops all cached article lists.
func (s *Service) ClearCache() {
	s.cache.Clear()
}

// SetCacheTTL changes the TTL for subsequent stores, clamped to the floor.
// Existing entries keep the expiry they were stored with.
func (s *Service) SetCacheTTL(ttl time.Duration) {
	if ttl < MinCacheTTL {
		ttl = MinCacheTTL
	}
	s.cache.SetTTL(ttl)
}

// SetMaxArticlesPerFeed changes the per-feed parse cap for subsequent
// fetches. Out-of-range values are rejected.
func (s *Service) SetMaxArticlesPerFeed(n int) bool {
	if n < MinArticlesPerFeed || n > MaxArticlesPerFeed {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxPerFeed = n
	return true
}

// Status reports service configuration and registry/cache counters.
type Status struct {
	Service            string `json:"service"`
	Initialized        bool   `json:"initialized"`
	CacheTTLSeconds    int    `json:"cache_ttl_seconds"`
	MaxArticlesPerFeed int    `json:"max_articles_per_feed"`
	TotalFeeds         int    `json:"total_feeds"`
	ActiveFeeds        int    `json:"active_feeds"`
	CacheEntries       int    `json:"cache_entries"`
}

func (s *Service) Status() Status {
	return Status{
		Service:            "news",
		Initialized:        true,
		CacheTTLSeconds:    int(s.cache.TTL() / time.Second),
		MaxArticlesPerFeed: s.getMaxPerFeed(),
		TotalFeeds:         s.registry.Count(),
		ActiveFeeds:        s.registry.ActiveCount(),
		CacheEntries:       s.cache.Size(),
	}
}

// SetConfig applies an opaque JSON configuration blob. Recognized keys:
// "feeds" (URLs to add, each validated like AddFeed) and "cache_ttl"
// (seconds). Unknown keys are ignored.
func (s *Service) SetConfig(ctx context.Context, blob []byte) error {
	var config struct {
		Feeds    []string `json:"feeds"`
		CacheTTL int      `json:"cache_ttl"`
	}

	if err := json.Unmarshal(blob, &config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for _, url := range config.Feeds {
		if !s.AddFeed(ctx, url) {
			slog.Warn("Configured feed not added", "feed", url)
		}
	}

	if config.CacheTTL > 0 {
		s.SetCacheTTL(time.Duration(config.CacheTTL) * time.Second)
	}

	return nil
}

func (s *Service) getMaxPerFeed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxPerFeed
}

func (s *Service) getWorkerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workerCount
}

// SetNowFunc overrides the clock for the service and its cache, for tests.
func (s *Service) SetNowFunc(now func() time.Time) {
	s.now = now
	s.cache.SetNowFunc(now)
}

func cacheKey(feedURL string) string {
	hash := sha256.Sum256([]byte("feed:" + feedURL))
	return hex.EncodeToString(hash[:])
}

func cloneArticles(articles []Article) []Article {
	out := make([]Article, len(articles))
	copy(out, articles)
	return out
}
