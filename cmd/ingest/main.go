package main

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"hotdeal/internal/cache"
	"hotdeal/internal/config"
	"hotdeal/internal/crawler"
	"hotdeal/internal/db"
	"hotdeal/internal/images"
	"hotdeal/internal/logger"
	"hotdeal/internal/observability"
	"hotdeal/internal/pipeline"
	"hotdeal/internal/repository"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "ingest:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.LogCategories...)
	defer log.Sync()

	// Storage connection failures are fatal: nothing is processed without it.
	sqlDB, err := db.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.EnsureSchema(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return fmt.Errorf("ensure schema: %w", err)
	}
	sqlDB.Close()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	observability.Start(cfg.MetricsPort)

	var relocator pipeline.ImageRelocator
	if cfg.Storage.Enabled() {
		rel, err := images.NewRelocator(cfg.Storage, log)
		if err != nil {
			// Records fall back to original thumbnail URLs.
			log.Warn("image relocation disabled", "error", err)
		} else {
			relocator = rel
		}
	} else {
		log.Info("object storage not configured, keeping original thumbnail URLs")
	}

	var seen pipeline.SeenCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Warn("invalid REDIS_URL, dedupe cache disabled", "error", err)
		} else {
			seen = &cache.SeenCache{Client: redis.NewClient(opts)}
		}
	}

	p := &pipeline.Pipeline{
		Crawlers:    crawler.NewRegistry(log),
		Store:       &repository.ProductRepository{Pool: pool},
		Images:      relocator,
		Seen:        seen,
		Channels:    pipeline.DefaultChannels,
		Workers:     cfg.WorkerCount,
		ImageFolder: cfg.ImageFolder,
		Log:         log,
	}

	res := p.Run(ctx, cfg.Targets)
	log.Info("run complete", "processed", res.Processed, "saved", res.Saved)
	return nil
}
