package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/homedash/homedash/app/weather"
)

var _ Widget = (*WeatherWidget)(nil)

// WeatherWidget serves the current weather for a configured location.
type WeatherWidget struct {
	svc *weather.Service

	mu     sync.Mutex
	city   string
	lat    float64
	lon    float64
	byCity bool
	active bool
}

func NewWeatherWidget(svc *weather.Service) *WeatherWidget {
	return &WeatherWidget{svc: svc}
}

func (w *WeatherWidget) ID() string { return "weather" }

func (w *WeatherWidget) Initialize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// stays inactive without an API key; Data then reports the missing
	// configuration instead of hitting the network
	w.active = w.svc.Configured()
	return nil
}

func (w *WeatherWidget) Update(ctx context.Context) {
	// data is fetched on demand and cached by the service; a periodic update
	// just warms the cache for the configured location
	if w.Active() {
		w.Data(ctx)
	}
}

func (w *WeatherWidget) Data(ctx context.Context) (json.RawMessage, error) {
	w.mu.Lock()
	city, lat, lon, byCity := w.city, w.lat, w.lon, w.byCity
	w.mu.Unlock()

	var (
		data string
		err  error
	)
	if byCity {
		data, err = w.svc.CurrentByCity(ctx, city, "", "")
	} else {
		data, err = w.svc.CurrentByCoords(ctx, lat, lon)
	}
	if err != nil {
		return nil, err
	}

	return json.RawMessage(data), nil
}

func (w *WeatherWidget) SetConfig(ctx context.Context, config json.RawMessage) error {
	var cfg struct {
		City      string   `json:"city"`
		Latitude  *float64 `json:"lat"`
		Longitude *float64 `json:"lon"`
	}
	if err := json.Unmarshal(config, &cfg); err != nil {
		return fmt.Errorf("invalid weather configuration: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case cfg.City != "":
		w.city = cfg.City
		w.byCity = true
	case cfg.Latitude != nil && cfg.Longitude != nil:
		w.lat = *cfg.Latitude
		w.lon = *cfg.Longitude
		w.byCity = false
	default:
		return fmt.Errorf("weather configuration requires city or lat/lon")
	}

	return nil
}

func (w *WeatherWidget) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

func (w *WeatherWidget) Cleanup() {
	w.mu.Lock()
	w.active = false
	w.mu.Unlock()
	w.svc.ClearCache()
}
