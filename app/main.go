package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homedash/homedash/app/api"
	"github.com/homedash/homedash/app/cfg"
	"github.com/homedash/homedash/app/database"
	"github.com/homedash/homedash/app/fetch"
	"github.com/homedash/homedash/app/news"
	"github.com/homedash/homedash/app/tasks"
	"github.com/homedash/homedash/app/todo"
	"github.com/homedash/homedash/app/weather"
	"github.com/homedash/homedash/app/widget"
)

// Per-widget refresh intervals, matching the host UI's expectations.
const (
	newsRefreshInterval    = 300 * time.Second
	weatherRefreshInterval = 900 * time.Second
	mailRefreshInterval    = 60 * time.Second
	streamRefreshInterval  = 30 * time.Second
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	appConfig, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appConfig == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appConfig.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	log.Printf("Starting HomeDash server (version %s)...", appConfig.Version)

	// Database connection
	db, err := database.NewConnection(appConfig.DBPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Printf("Database ready (schema version %d, dirty=%v)", version, dirty)

	// Shared HTTP fetcher
	fetcher := fetch.NewClient(appConfig.UserAgent, fetch.DefaultTimeout)

	// News aggregation
	feedURLs, err := news.LoadFeedsFile(appConfig.FeedsFile)
	if err != nil {
		log.Fatal("Failed to load feeds file:", err)
	}
	if len(feedURLs) == 0 {
		log.Printf("No feeds file found at %s, using built-in defaults", appConfig.FeedsFile)
		feedURLs = nil
	} else {
		log.Printf("Loaded %d feeds from %s", len(feedURLs), appConfig.FeedsFile)
	}

	newsSvc := news.NewService(fetcher, news.Options{
		CacheTTL:           time.Duration(appConfig.CacheTTL) * time.Second,
		MaxArticlesPerFeed: appConfig.MaxArticlesPerFeed,
		WorkerCount:        appConfig.WorkerCount,
		DefaultFeeds:       feedURLs,
	})

	// Weather client
	weatherSvc := weather.NewService(fetcher, weather.Options{
		APIKey:     appConfig.WeatherAPIKey,
		BaseURL:    appConfig.WeatherBaseURL,
		GeoBaseURL: appConfig.GeoBaseURL,
		Units:      appConfig.WeatherUnits,
	})

	// Task store
	todoSvc := todo.NewService(database.NewTodoRepository(db))

	// Widget registry
	manager := widget.NewManager()
	registerWidget(manager, widget.NewNewsWidget(newsSvc), newsRefreshInterval)
	registerWidget(manager, widget.NewWeatherWidget(weatherSvc), weatherRefreshInterval)
	registerWidget(manager, widget.NewTodoWidget(todoSvc), 0)
	registerWidget(manager, widget.NewMailWidget(), mailRefreshInterval)
	registerWidget(manager, widget.NewStreamWidget(), streamRefreshInterval)

	// Background refresh
	log.Printf("Starting background scheduler with %d workers...", appConfig.WorkerCount)
	scheduler := tasks.NewScheduler(manager,
		time.Duration(appConfig.SchedulerInterval)*time.Second, appConfig.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP server
	handler := api.NewHandler(newsSvc, weatherSvc, todoSvc, manager)
	server := api.NewServer(handler, appConfig.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("HomeDash server started successfully")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	manager.Shutdown()

	log.Println("HomeDash server shutdown complete")
}

func registerWidget(manager *widget.Manager, w widget.Widget, interval time.Duration) {
	if err := manager.Register(w, interval); err != nil {
		log.Printf("Warning: %v", err)
	}
}
