package weather

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/homedash/homedash/app/cache"
	"github.com/homedash/homedash/app/fetch"
)

const DefaultCacheTTL = 600 * time.Second

// Fetcher is the HTTP GET capability the client consumes, swappable for a
// test double.
type Fetcher interface {
	Fetch(ctx context.Context, url string) fetch.Result
}

type Options struct {
	APIKey     string
	BaseURL    string
	GeoBaseURL string
	Units      string
	Language   string
	CacheTTL   time.Duration
}

// Service is a single-endpoint HTTP client for an OpenWeatherMap-shaped API.
// Responses are passed through as raw JSON and cached with a short TTL; it
// shares the response-cache pattern with the news aggregator but has no
// parsing concerns of its own.
type Service struct {
	fetcher    Fetcher
	apiKey     string
	baseURL    string
	geoBaseURL string
	units      string
	language   string
	cache      *cache.Cache[string]
}

func NewService(fetcher Fetcher, opts Options) *Service {
	ttl := opts.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}

	units := opts.Units
	switch units {
	case "standard", "metric", "imperial":
	default:
		units = "metric"
	}

	language := opts.Language
	if language == "" {
		language = "en"
	}

	return &Service{
		fetcher:    fetcher,
		apiKey:     opts.APIKey,
		baseURL:    opts.BaseURL,
		geoBaseURL: opts.GeoBaseURL,
		units:      units,
		language:   language,
		cache:      cache.New[string](ttl),
	}
}

func (s *Service) Configured() bool {
	return s.apiKey != ""
}

// CurrentByCoords returns the current weather for a coordinate pair.
func (s *Service) CurrentByCoords(ctx context.Context, lat, lon float64) (string, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))

	return s.request(ctx, s.baseURL, "weather", params)
}

// CurrentByCity returns the current weather for a city query; state and
// country narrow the lookup and may be empty.
func (s *Service) CurrentByCity(ctx context.Context, city, state, country string) (string, error) {
	if city == "" {
		return "", fmt.Errorf("city name cannot be empty")
	}

	query := city
	if state != "" {
		query += "," + state
	}
	if country != "" {
		query += "," + country
	}

	params := url.Values{}
	params.Set("q", query)

	return s.request(ctx, s.baseURL, "weather", params)
}

// Forecast returns up to count forecast entries for a coordinate pair.
func (s *Service) Forecast(ctx context.Context, lat, lon float64, count int) (string, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	if count > 0 {
		params.Set("cnt", strconv.Itoa(count))
	}

	return s.request(ctx, s.baseURL, "forecast", params)
}

// Geocode resolves a location name to coordinates.
func (s *Service) Geocode(ctx context.Context, location string, limit int) (string, error) {
	if location == "" {
		return "", fmt.Errorf("location cannot be empty")
	}
	if limit <= 0 {
		limit = 1
	}

	params := url.Values{}
	params.Set("q", location)
	params.Set("limit", strconv.Itoa(limit))

	return s.request(ctx, s.geoBaseURL, "direct", params)
}

// ReverseGeocode resolves coordinates to location names.
func (s *Service) ReverseGeocode(ctx context.Context, lat, lon float64, limit int) (string, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return "", err
	}
	if limit <= 0 {
		limit = 1
	}

	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("limit", strconv.Itoa(limit))

	return s.request(ctx, s.geoBaseURL, "reverse", params)
}

func (s *Service) ClearCache() {
	s.cache.Clear()
}

type Status struct {
	Service      string `json:"service"`
	Configured   bool   `json:"configured"`
	Units        string `json:"units"`
	CacheTTL     int    `json:"cache_ttl_seconds"`
	CacheEntries int    `json:"cache_entries"`
}

func (s *Service) Status() Status {
	return Status{
		Service:      "weather",
		Configured:   s.Configured(),
		Units:        s.units,
		CacheTTL:     int(s.cache.TTL() / time.Second),
		CacheEntries: s.cache.Size(),
	}
}

// request performs a cached GET against endpoint. Successful bodies are
// cached under a hash of the endpoint and query; failures are returned as
// errors and never cached.
func (s *Service) request(ctx context.Context, base, endpoint string, params url.Values) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("weather service not configured: missing API key")
	}

	key := requestCacheKey(endpoint, params)
	if data, _, ok := s.cache.Get(key); ok {
		return data, nil
	}

	params.Set("appid", s.apiKey)
	params.Set("units", s.units)
	params.Set("lang", s.language)

	requestURL := fmt.Sprintf("%s/%s?%s", base, endpoint, params.Encode())

	res := s.fetcher.Fetch(ctx, requestURL)
	if !res.Success {
		slog.Warn("Weather request failed", "endpoint", endpoint, "error", res.Body)
		return "", fmt.Errorf("weather request failed: %s", res.Body)
	}
	if res.StatusCode != http.StatusOK {
		slog.Warn("Weather request failed", "endpoint", endpoint, "status", res.StatusCode)
		return "", fmt.Errorf("weather API error: HTTP %d", res.StatusCode)
	}

	s.cache.Set(key, res.Body)
	return res.Body, nil
}

// requestCacheKey excludes credentials so key material never depends on the
// configured API key.
func requestCacheKey(endpoint string, params url.Values) string {
	hash := sha256.Sum256([]byte("weather:" + endpoint + "?" + params.Encode()))
	return hex.EncodeToString(hash[:])
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("invalid coordinates: lat=%v lon=%v", lat, lon)
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
