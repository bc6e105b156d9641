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

	"github.com/podlens/podlens/app/analysis"
	"github.com/podlens/podlens/app/api"
	"github.com/podlens/podlens/app/batch"
	"github.com/podlens/podlens/app/cfg"
	"github.com/podlens/podlens/app/config"
	"github.com/podlens/podlens/app/database"
	"github.com/podlens/podlens/app/schedule"
	"github.com/podlens/podlens/app/youtube"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load configuration from environment variables and command-line flags
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	log.Printf("Starting PodLens server (version %s)...", appCfg.Version)

	// Database connection and schema
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Printf("Database ready at %s (schema version %d, dirty: %t)", appCfg.DBPath, version, dirty)

	analysisRepo := database.NewAnalysisRepository(db)
	videoRepo := database.NewVideoRepository(db)

	// Trusted channels
	channelsCfg, err := config.NewLoader(appCfg.ChannelsFile).Load()
	if err != nil {
		log.Fatal("Failed to load channels configuration:", err)
	}
	log.Printf("Loaded %d channels from %s", len(channelsCfg.Channels), appCfg.ChannelsFile)

	daysBack := channelsCfg.DiscoveryDaysBack
	if daysBack <= 0 {
		daysBack = appCfg.DiscoveryDaysBack
	}

	ctx := context.Background()

	// Discovery strategy: the Data API when a key is configured, channel
	// feeds otherwise. Feed-based discovery cannot resolve video metadata,
	// so explicit-URL endpoints are unavailable in that mode.
	var discoverer youtube.Discoverer
	var metadata youtube.MetadataProvider
	if appCfg.YouTubeAPIKey != "" {
		client, err := youtube.NewClient(ctx, appCfg.YouTubeAPIKey, channelsCfg.VideoLengthExcluded*60)
		if err != nil {
			log.Fatal("Failed to create YouTube client:", err)
		}
		discoverer = client
		metadata = client
		log.Println("Using YouTube Data API for discovery")
	} else {
		discoverer = youtube.NewFeedDiscoverer()
		log.Println("Using channel feeds for discovery (YOUTUBE_API_KEY not set)")
	}

	if appCfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is required")
	}
	provider, err := analysis.NewGemini(ctx, appCfg.GeminiAPIKey, appCfg.GeminiModel, metadata)
	if err != nil {
		log.Fatal("Failed to create analysis provider:", err)
	}

	analyzer := batch.NewAnalyzer(analysisRepo, videoRepo, provider, discoverer, metadata,
		batch.NewProgressTracker(), channelsCfg.Channels, batch.Options{
			Workers:       appCfg.WorkerCount,
			DispatchDelay: time.Duration(appCfg.DispatchDelayMs) * time.Millisecond,
			DaysBack:      daysBack,
		})

	// Optional unattended batch runs
	if appCfg.Schedule != "" {
		runner := schedule.NewRunner(analyzer, appCfg.Schedule, daysBack)
		if err := runner.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler:", err)
		}
		defer runner.Stop()
	}

	// HTTP server
	apiHandler := api.NewHandler(analyzer, analysisRepo, videoRepo)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey, appCfg.Version)

	// No WriteTimeout: batch endpoints respond only after the whole run
	// completes, which can take minutes.
	httpServer := &http.Server{
		Addr:        ":" + appCfg.Port,
		Handler:     server,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("PodLens server started successfully")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	log.Println("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	log.Println("PodLens server shutdown complete")
}
