package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nexusai/newshub/internal/api"
	"github.com/nexusai/newshub/internal/article"
	"github.com/nexusai/newshub/internal/cache"
	"github.com/nexusai/newshub/internal/config"
	"github.com/nexusai/newshub/internal/feed"
	"github.com/nexusai/newshub/internal/image"
	"github.com/nexusai/newshub/internal/ingest"
	"github.com/nexusai/newshub/internal/logger"
	"github.com/nexusai/newshub/internal/relevance"
	"github.com/nexusai/newshub/internal/retry"
	"github.com/nexusai/newshub/internal/storage"
)

func main() {
	log := logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}

	sources, err := feed.LoadSources(cfg.SourcesConfigPath)
	if err != nil {
		log.Error("sources load failed", "error", err)
		os.Exit(1)
	}
	log.Info("sources configured", "count", len(sources))

	// Ingestion pipeline.
	resolver := image.NewResolver(cfg.AllowImageFetch, cfg.ImageFetchTimeout, log)
	builder := article.NewBuilder(resolver, 0)
	filter := relevance.New(cfg.Keywords)
	feeds := feed.NewClient(cfg.FeedTimeout, retry.Config{
		Attempts: cfg.RetryAttempts,
		Delay:    cfg.RetryDelay,
		Backoff:  true,
	})
	ingestor := ingest.New(feeds, filter, builder, sources, cfg.MaxArticlesPerSource, log)

	// Cache, seeded from the snapshot file when one survives a restart.
	mgr := cache.NewManager(ingestor, cfg.StaleTimeout, storage.NewSnapshot(cfg.SnapshotPath), log)
	mgr.LoadSnapshot()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go mgr.Run(ctx, cfg.RefreshInterval)

	srv := api.New(mgr, sources, log, cfg.ArticlesLimit, cfg.StaticDir)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server started", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	cancel() // stop the background refresh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}

	log.Info("server stopped")
}
