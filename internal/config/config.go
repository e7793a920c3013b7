package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"azdigest/internal/feed"
)

// Config is the environment-driven configuration surface. Feed sources
// normally arrive per request; the YAML file only supplies defaults for
// one-shot runs.
type Config struct {
	// Server settings
	Port string

	// Digest defaults (per-request values override these)
	BulletCount        int
	RecencyWindowHours int
	MaxItems           int
	LookbackDays       int

	// Dedup store settings
	PostgresDSN   string
	DedupFilePath string

	// Azure OpenAI enrichment settings
	AOAIEndpoint   string
	AOAIDeployment string
	AOAIAPIVersion string
	AOAIAPIKey     string

	// Gemini fallback enrichment
	GeminiAPIKey string

	// Timeouts and retry
	FeedTimeout      time.Duration
	ScrapeTimeout    time.Duration
	EnrichTimeout    time.Duration
	FeedRetryCount   int
	FeedRetryBackoff time.Duration

	// One-shot mode
	FeedsConfigPath string

	// App settings
	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		Port:               "8080",
		BulletCount:        3,
		RecencyWindowHours: 24,
		MaxItems:           12,
		LookbackDays:       30,
		FeedTimeout:        12 * time.Second,
		ScrapeTimeout:      10 * time.Second,
		EnrichTimeout:      18 * time.Second,
		FeedRetryCount:     2,
		FeedRetryBackoff:   1 * time.Second,
		AOAIAPIVersion:     "2024-12-01-preview",
	}

	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.PostgresDSN = os.Getenv("DATABASE_URL")
	cfg.DedupFilePath = os.Getenv("DEDUP_FILE_PATH")
	cfg.FeedsConfigPath = os.Getenv("FEEDS_CONFIG_PATH")

	cfg.AOAIEndpoint = getEnvFirst("AOAI_ENDPOINT", "AZURE_OPENAI_ENDPOINT")
	cfg.AOAIDeployment = getEnvFirst("AOAI_DEPLOYMENT", "AZURE_OPENAI_DEPLOYMENT")
	cfg.AOAIAPIKey = getEnvFirst("AOAI_API_KEY", "AZURE_OPENAI_API_KEY")
	if v := getEnvFirst("AOAI_API_VERSION", "AZURE_OPENAI_API_VERSION"); v != "" {
		cfg.AOAIAPIVersion = v
	}
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	cfg.BulletCount = getEnvIntOrDefault("SUMMARY_BULLET_COUNT", cfg.BulletCount)
	cfg.RecencyWindowHours = getEnvIntOrDefault("RECENCY_WINDOW_HOURS", cfg.RecencyWindowHours)
	cfg.MaxItems = getEnvIntOrDefault("MAX_ITEMS", cfg.MaxItems)
	cfg.LookbackDays = getEnvIntOrDefault("LOOKBACK_DAYS", cfg.LookbackDays)
	cfg.FeedRetryCount = getEnvIntOrDefault("FEED_RETRY_COUNT", cfg.FeedRetryCount)

	if v := os.Getenv("FEED_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.FeedTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("SCRAPE_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.ScrapeTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("ENRICH_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.EnrichTimeout = time.Duration(val) * time.Second
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.BulletCount < 1 || c.BulletCount > 10 {
		return fmt.Errorf("SUMMARY_BULLET_COUNT must be between 1 and 10, got %d", c.BulletCount)
	}
	if c.RecencyWindowHours < 1 || c.RecencyWindowHours > 168 {
		return fmt.Errorf("RECENCY_WINDOW_HOURS must be between 1 and 168, got %d", c.RecencyWindowHours)
	}
	if c.MaxItems < 1 || c.MaxItems > 30 {
		return fmt.Errorf("MAX_ITEMS must be between 1 and 30, got %d", c.MaxItems)
	}
	if c.FeedRetryCount < 1 {
		return fmt.Errorf("FEED_RETRY_COUNT must be at least 1, got %d", c.FeedRetryCount)
	}
	return nil
}

// sourcesFile is the YAML shape for default feed sources:
//
//	sources:
//	  - name: Security Blog
//	    url: https://example.com/feed
//	    emoji: "🛡️"
type sourcesFile struct {
	Sources []feed.Source `yaml:"sources"`
}

// LoadSources reads the default feed source list from a YAML file.
func LoadSources(path string) ([]feed.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sf sourcesFile
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("failed to parse feed sources file: %w", err)
	}
	return sf.Sources, nil
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

func getEnvFirst(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
