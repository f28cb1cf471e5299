package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"hotdeal/internal/model"
)

// Config is the full configuration surface of the ingest binary.
type Config struct {
	DatabaseURL   string
	RedisURL      string
	Storage       StorageConfig
	Targets       []model.CrawlTarget
	WorkerCount   int
	MetricsPort   string
	ImageFolder   string
	LogCategories []string
}

// StorageConfig holds object-storage credentials. Uploads are disabled when
// Endpoint or Bucket is empty; the pipeline then keeps original thumbnail URLs.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether the storage client should be constructed at all.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// Load reads configuration from the environment, with .env fallback.
// It returns an error instead of exiting; the entry point owns exit behavior.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Storage: StorageConfig{
			Endpoint:  os.Getenv("STORAGE_ENDPOINT"),
			AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
			Region:    getEnv("STORAGE_REGION", "ap-northeast-2"),
			Bucket:    os.Getenv("STORAGE_BUCKET"),
			UseSSL:    getEnv("STORAGE_USE_SSL", "true") == "true",
		},
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		ImageFolder: getEnv("IMAGE_FOLDER", "hotdeal"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	workers, err := strconv.Atoi(getEnv("WORKER_COUNT", "5"))
	if err != nil || workers < 1 {
		return nil, fmt.Errorf("invalid WORKER_COUNT: %q", os.Getenv("WORKER_COUNT"))
	}
	cfg.WorkerCount = workers

	targets, err := ParseTargets(getEnv("CRAWL_TARGETS", "ppomppu:ppomppu"))
	if err != nil {
		return nil, err
	}
	cfg.Targets = targets

	if raw := os.Getenv("LOG_CATEGORIES"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cfg.LogCategories = append(cfg.LogCategories, c)
			}
		}
	}

	return cfg, nil
}

// ParseTargets parses a comma-separated list of crawler:category pairs,
// e.g. "ppomppu:ppomppu,quasarzone:qb_saleinfo".
func ParseTargets(raw string) ([]model.CrawlTarget, error) {
	var targets []model.CrawlTarget
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, category, ok := strings.Cut(pair, ":")
		if !ok || name == "" || category == "" {
			return nil, fmt.Errorf("invalid crawl target %q, want crawler:category", pair)
		}
		targets = append(targets, model.CrawlTarget{Crawler: name, Category: category})
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no crawl targets configured")
	}
	return targets, nil
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
