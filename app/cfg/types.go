package cfg

type Cfg struct {
	// HTTP server
	Port         string
	APIAccessKey string

	// Storage
	DBPath string

	// News aggregation
	FeedsFile          string
	CacheTTL           int
	MaxArticlesPerFeed int

	// Weather
	WeatherAPIKey  string
	WeatherBaseURL string
	GeoBaseURL     string
	WeatherUnits   string

	// Background processing
	WorkerCount       int
	SchedulerInterval int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
