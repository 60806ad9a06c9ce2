package main

import (
	"context"
	"net/http"
	"time"

	"vidserve/config"
	"vidserve/delivery"
	"vidserve/encoder"
	"vidserve/history"
	"vidserve/job"
	"vidserve/logger"
	"vidserve/metadata"
	"vidserve/notify"
	"vidserve/objectstore"
	"vidserve/quality"
	"vidserve/routes"
)

func main() {
	logger.Info("Starting Vidserve server initialization")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Debug("Initializing history database")
	hist, err := history.Open(config.GetHistoryDBPath())
	if err != nil {
		logger.Fatalf("Failed to initialize history store: %v", err)
	}
	defer hist.Close()
	logger.Info("History database initialized successfully")

	logger.Debugf("Initializing object store backend: %s", config.GetStoreBackend())
	store, err := objectstore.New(ctx)
	if err != nil {
		logger.Fatalf("Failed to initialize object store: %v", err)
	}
	logger.Info("Object store initialized successfully")

	encoder.RegisterDefaults()

	var registry job.Registry
	if addr := config.GetRedisAddr(); addr != "" {
		logger.Infof("Using Redis job registry at %s", addr)
		registry = job.NewRedisRegistry(addr, config.GetRedisPassword())
	} else {
		logger.Info("Using in-memory job registry")
		registry = job.NewMemoryRegistry()
	}

	var meta metadata.Store
	if url := config.GetMetaURL(); url != "" {
		meta = metadata.NewHTTPStore(url, config.GetMetaAuthToken())
	} else {
		logger.Warn("No metadata service configured, using in-memory store")
		meta = metadata.NewMemStore()
	}

	bus := notify.NewEventBus()
	notifier := notify.New(bus, meta, config.GetCallbackURL())

	coordinator := job.NewCoordinator(store, registry, hist, notifier, job.Config{
		ScratchDir:    config.GetScratchDir(),
		EncoderName:   config.GetEncoderName(),
		EncodeTimeout: config.GetEncodeTimeout(),
		Parallel:      int64(config.GetEncodeParallel()),
		Catalog:       quality.Catalog,
	})

	resolver := delivery.NewResolver(store, quality.Catalog, quality.Fallback())

	// Clean up old job records every 24 hours
	logger.Info("Starting cleanup routine (runs every 24 hours)")
	go cleanupRoutine(ctx, hist)

	logger.Info("Registering HTTP routes")
	handler := routes.NewHandler(store, meta, coordinator, resolver, bus,
		config.GetPlaybackTokenSecret(), config.ProxySignedURLs())
	mux := http.NewServeMux()
	handler.Register(mux)

	addr := config.GetListenAddr()
	logger.Infof("Vidserve server starting on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatalf("Server failed to start: %v", err)
	}
}

// cleanupRoutine periodically removes old terminal job records.
func cleanupRoutine(ctx context.Context, hist *history.Store) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cleanup routine stopped due to context cancellation")
			return
		case <-ticker.C:
			maxAge := 30 * 24 * time.Hour
			logger.Debugf("Cleaning up job records older than %v", maxAge)
			if err := hist.CleanupOldRecords(maxAge); err != nil {
				logger.Errorf("Failed to cleanup old job records: %v", err)
			} else {
				logger.Info("Scheduled cleanup completed")
			}
		}
	}
}
