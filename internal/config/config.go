package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime settings for the service. Values come from
// environment variables with sensible defaults; the feed source list
// lives in a separate YAML file (see internal/feed).
type Config struct {
	// HTTP settings
	Port      string
	StaticDir string

	// Feed settings
	SourcesConfigPath    string
	MaxArticlesPerSource int
	Keywords             []string

	// Cache settings
	StaleTimeout    time.Duration
	RefreshInterval time.Duration
	ArticlesLimit   int
	SnapshotPath    string

	// Image resolver settings
	AllowImageFetch   bool
	ImageFetchTimeout time.Duration

	// Fetch settings
	FeedTimeout   time.Duration
	RetryAttempts int
	RetryDelay    time.Duration

	Debug bool
}

// Load builds a Config from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		StaticDir:            getEnvOrDefault("STATIC_DIR", "web"),
		SourcesConfigPath:    getEnvOrDefault("SOURCES_CONFIG_PATH", "configs/feeds.yaml"),
		MaxArticlesPerSource: getEnvIntOrDefault("MAX_ARTICLES_PER_SOURCE", 5),
		StaleTimeout:         getEnvDurationOrDefault("STALE_TIMEOUT", 30*time.Minute),
		RefreshInterval:      getEnvDurationOrDefault("REFRESH_INTERVAL", 30*time.Minute),
		ArticlesLimit:        getEnvIntOrDefault("ARTICLES_LIMIT", 12),
		SnapshotPath:         getEnvOrDefault("SNAPSHOT_PATH", "articles_cache.json"),
		AllowImageFetch:      getEnvBoolOrDefault("ALLOW_IMAGE_FETCH", false),
		ImageFetchTimeout:    getEnvDurationOrDefault("IMAGE_FETCH_TIMEOUT", 3*time.Second),
		FeedTimeout:          getEnvDurationOrDefault("FEED_TIMEOUT", 15*time.Second),
		RetryAttempts:        getEnvIntOrDefault("RETRY_ATTEMPTS", 2),
		RetryDelay:           getEnvDurationOrDefault("RETRY_DELAY", 2*time.Second),
		Debug:                getEnvBoolOrDefault("DEBUG", false),
	}

	cfg.Keywords = defaultKeywords
	if v := os.Getenv("KEYWORDS"); v != "" {
		cfg.Keywords = splitKeywords(v)
	}

	return cfg, cfg.Validate()
}

// defaultKeywords gate topically mixed feeds; feeds marked topic_specific
// in the sources file bypass the filter entirely.
var defaultKeywords = []string{
	"ai",
	"artificial intelligence",
	"machine learning",
	"deep learning",
	"neural network",
	"gpt",
	"llm",
}

func (c *Config) Validate() error {
	if c.MaxArticlesPerSource <= 0 {
		return fmt.Errorf("MAX_ARTICLES_PER_SOURCE must be positive, got %d", c.MaxArticlesPerSource)
	}
	if c.StaleTimeout <= 0 {
		return fmt.Errorf("STALE_TIMEOUT must be positive, got %s", c.StaleTimeout)
	}
	if c.ArticlesLimit <= 0 {
		return fmt.Errorf("ARTICLES_LIMIT must be positive, got %d", c.ArticlesLimit)
	}
	return nil
}

func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// Bare numbers are treated as seconds for deploy-time convenience.
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
