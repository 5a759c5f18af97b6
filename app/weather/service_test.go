package weather

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/homedash/homedash/app/fetch"
)

// recordingFetcher returns one canned result and remembers the requested URLs.
type recordingFetcher struct {
	mu     sync.Mutex
	result fetch.Result
	urls   []string
}

func (f *recordingFetcher) Fetch(_ context.Context, url string) fetch.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	return f.result
}

func (f *recordingFetcher) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.urls)
}

func (f *recordingFetcher) lastURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.urls) == 0 {
		return ""
	}
	return f.urls[len(f.urls)-1]
}

func newTestService(fetcher Fetcher) *Service {
	return NewService(fetcher, Options{
		APIKey:     "test-key",
		BaseURL:    "https://api.example.com/data/2.5",
		GeoBaseURL: "https://api.example.com/geo/1.0",
		Units:      "metric",
	})
}

func TestCurrentByCoords(t *testing.T) {
	fetcher := &recordingFetcher{result: fetch.Result{Body: `{"temp": 21.5}`, StatusCode: 200, Success: true}}
	svc := newTestService(fetcher)

	data, err := svc.CurrentByCoords(context.Background(), 52.52, 13.405)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if data != `{"temp": 21.5}` {
		t.Errorf("Expected raw body passthrough, got: %s", data)
	}

	url := fetcher.lastURL()
	if !strings.Contains(url, "/weather?") {
		t.Errorf("Expected weather endpoint, got: %s", url)
	}
	if !strings.Contains(url, "lat=52.52") || !strings.Contains(url, "lon=13.405") {
		t.Errorf("Expected coordinates in query, got: %s", url)
	}
	if !strings.Contains(url, "appid=test-key") {
		t.Errorf("Expected API key in query, got: %s", url)
	}
	if !strings.Contains(url, "units=metric") {
		t.Errorf("Expected units in query, got: %s", url)
	}
}

func TestCurrentByCity(t *testing.T) {
	fetcher := &recordingFetcher{result: fetch.Result{Body: `{}`, StatusCode: 200, Success: true}}
	svc := newTestService(fetcher)

	if _, err := svc.CurrentByCity(context.Background(), "Berlin", "", "DE"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(fetcher.lastURL(), "q=Berlin%2CDE") {
		t.Errorf("Expected city query, got: %s", fetcher.lastURL())
	}

	if _, err := svc.CurrentByCity(context.Background(), "", "", ""); err == nil {
		t.Error("Expected error for empty city")
	}
}

func TestForecast(t *testing.T) {
	fetcher := &recordingFetcher{result: fetch.Result{Body: `{}`, StatusCode: 200, Success: true}}
	svc := newTestService(fetcher)

	if _, err := svc.Forecast(context.Background(), 52.52, 13.405, 8); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	url := fetcher.lastURL()
	if !strings.Contains(url, "/forecast?") {
		t.Errorf("Expected forecast endpoint, got: %s", url)
	}
	if !strings.Contains(url, "cnt=8") {
		t.Errorf("Expected count in query, got: %s", url)
	}
}

func TestGeocode(t *testing.T) {
	fetcher := &recordingFetcher{result: fetch.Result{Body: `[]`, StatusCode: 200, Success: true}}
	svc := newTestService(fetcher)

	if _, err := svc.Geocode(context.Background(), "Berlin", 5); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(fetcher.lastURL(), "/geo/1.0/direct?") {
		t.Errorf("Expected geocoding endpoint, got: %s", fetcher.lastURL())
	}

	if _, err := svc.Geocode(context.Background(), "", 1); err == nil {
		t.Error("Expected error for empty location")
	}
}

func TestReverseGeocode(t *testing.T) {
	fetcher := &recordingFetcher{result: fetch.Result{Body: `[]`, StatusCode: 200, Success: true}}
	svc := newTestService(fetcher)

	if _, err := svc.ReverseGeocode(context.Background(), 52.52, 13.405, 0); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	url := fetcher.lastURL()
	if !strings.Contains(url, "/reverse?") {
		t.Errorf("Expected reverse endpoint, got: %s", url)
	}
	if !strings.Contains(url, "limit=1") {
		t.Errorf("Expected default limit 1, got: %s", url)
	}
}

func TestResponseCaching(t *testing.T) {
	fetcher := &recordingFetcher{result: fetch.Result{Body: `{}`, StatusCode: 200, Success: true}}
	svc := newTestService(fetcher)

	svc.CurrentByCoords(context.Background(), 52.52, 13.405)
	svc.CurrentByCoords(context.Background(), 52.52, 13.405)

	if got := fetcher.requestCount(); got != 1 {
		t.Errorf("Expected 1 upstream request with a warm cache, got: %d", got)
	}

	// A different query misses the cache
	svc.CurrentByCoords(context.Background(), 48.85, 2.35)
	if got := fetcher.requestCount(); got != 2 {
		t.Errorf("Expected 2 upstream requests, got: %d", got)
	}

	svc.ClearCache()
	svc.CurrentByCoords(context.Background(), 52.52, 13.405)
	if got := fetcher.requestCount(); got != 3 {
		t.Errorf("Expected refetch after cache clear, got: %d", got)
	}
}

func TestErrorsNotCached(t *testing.T) {
	fetcher := &recordingFetcher{result: fetch.Result{Body: "", StatusCode: 500, Success: true}}
	svc := newTestService(fetcher)

	if _, err := svc.CurrentByCoords(context.Background(), 52.52, 13.405); err == nil {
		t.Fatal("Expected error for HTTP 500")
	}
	svc.CurrentByCoords(context.Background(), 52.52, 13.405)

	if got := fetcher.requestCount(); got != 2 {
		t.Errorf("Expected failures to bypass the cache, got: %d requests", got)
	}
}

func TestInvalidCoordinates(t *testing.T) {
	svc := newTestService(&recordingFetcher{})

	cases := [][2]float64{
		{91, 0},
		{-91, 0},
		{0, 181},
		{0, -181},
	}
	for _, c := range cases {
		if _, err := svc.CurrentByCoords(context.Background(), c[0], c[1]); err == nil {
			t.Errorf("Expected error for lat=%v lon=%v", c[0], c[1])
		}
	}
}

func TestNotConfigured(t *testing.T) {
	svc := NewService(&recordingFetcher{}, Options{})

	if svc.Configured() {
		t.Error("Expected unconfigured without API key")
	}
	if _, err := svc.CurrentByCoords(context.Background(), 52.52, 13.405); err == nil {
		t.Error("Expected error when not configured")
	}
}

func TestStatus(t *testing.T) {
	svc := newTestService(&recordingFetcher{})

	status := svc.Status()
	if status.Service != "weather" {
		t.Errorf("Expected service 'weather', got: %s", status.Service)
	}
	if !status.Configured {
		t.Error("Expected configured true")
	}
	if status.Units != "metric" {
		t.Errorf("Expected units 'metric', got: %s", status.Units)
	}
	if status.CacheTTL != 600 {
		t.Errorf("Expected TTL 600, got: %d", status.CacheTTL)
	}
}

func TestUnitsValidation(t *testing.T) {
	svc := NewService(&recordingFetcher{}, Options{APIKey: "k", Units: "fahrenheit"})

	if svc.Status().Units != "metric" {
		t.Errorf("Expected unknown units to fall back to metric, got: %s", svc.Status().Units)
	}
}
