package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// HTTP server
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for management endpoints (optional)"`

	// Storage
	DBPath string `long:"db-path" env:"DB_PATH" default:"./homedash.db" description:"Path to the SQLite database file"`

	// News aggregation
	FeedsFile          string `long:"feeds-file" env:"FEEDS_FILE" default:"./feeds.yml" description:"YAML file with default news feeds"`
	CacheTTL           int    `long:"cache-ttl" env:"CACHE_TTL" default:"1800" description:"News cache TTL in seconds (minimum 300)"`
	MaxArticlesPerFeed int    `long:"max-articles-per-feed" env:"MAX_ARTICLES_PER_FEED" default:"50" description:"Maximum articles parsed per feed (1-200)"`

	// Weather
	WeatherAPIKey  string `long:"weather-api-key" env:"WEATHER_API_KEY" description:"API key for the weather provider (optional)"`
	WeatherBaseURL string `long:"weather-base-url" env:"WEATHER_BASE_URL" default:"https://api.openweathermap.org/data/2.5" description:"Weather API base URL"`
	GeoBaseURL     string `long:"geo-base-url" env:"GEO_BASE_URL" default:"https://api.openweathermap.org/geo/1.0" description:"Geocoding API base URL"`
	WeatherUnits   string `long:"weather-units" env:"WEATHER_UNITS" default:"metric" description:"Weather units (standard, metric, imperial)"`

	// Background processing
	WorkerCount       int `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for widget refresh"`
	SchedulerInterval int `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler tick interval in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"HomeDash/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:               raw.Port,
		APIAccessKey:       raw.APIAccessKey,
		DBPath:             raw.DBPath,
		FeedsFile:          raw.FeedsFile,
		CacheTTL:           raw.CacheTTL,
		MaxArticlesPerFeed: raw.MaxArticlesPerFeed,
		WeatherAPIKey:      raw.WeatherAPIKey,
		WeatherBaseURL:     raw.WeatherBaseURL,
		GeoBaseURL:         raw.GeoBaseURL,
		WeatherUnits:       raw.WeatherUnits,
		WorkerCount:        raw.WorkerCount,
		SchedulerInterval:  raw.SchedulerInterval,
		UserAgent:          raw.UserAgent,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
