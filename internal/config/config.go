package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int
	TrustedProxies     []string

	// Feed backend
	FeedBackend string
	FeedBaseURL string
	FeedTimeout time.Duration
	FeedDataDir string

	// AWS feed backend
	AWSRegion       string
	AnalyticsBucket string
	AnalyticsKey    string
	IntentsTable    string

	// Preferences
	PreferenceStore string
	SQLiteDBPath    string

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Chart cache
	ChartCacheSize int
	ChartCacheTTL  time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

var (
	validBackends         = []string{"http", "aws", "memory"}
	validPreferenceStores = []string{"sqlite", "memory"}
	validLogLevels        = []string{"debug", "info", "warn", "error"}
	validLogFormats       = []string{"text", "json"}
)

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES"),

		FeedBackend: getEnv("FEED_BACKEND", "http"),
		FeedBaseURL: getEnv("FEED_BASE_URL", "https://wyhh5cm8pd.execute-api.us-east-1.amazonaws.com/prod"),
		FeedTimeout: getEnvDuration("FEED_TIMEOUT", 7*time.Second),
		FeedDataDir: getEnv("FEED_DATA_DIR", "data"),

		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		AnalyticsBucket: getEnv("ANALYTICS_BUCKET", ""),
		AnalyticsKey:    getEnv("ANALYTICS_KEY", "analytics.json"),
		IntentsTable:    getEnv("INTENTS_TABLE", "NormalizedIntents"),

		PreferenceStore: getEnv("PREFERENCE_STORE", "sqlite"),
		SQLiteDBPath:    getEnv("SQLITE_DB_PATH", "./data/intentdash.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "intentdash"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "feed_events"),

		ChartCacheSize: getEnvInt("CHART_CACHE_SIZE", 64),
		ChartCacheTTL:  getEnvDuration("CHART_CACHE_TTL", 10*time.Minute),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	return cfg
}

// Validate validates the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.FeedBackend) {
		errors = append(errors, fmt.Sprintf("invalid feed backend '%s': must be one of %v", c.FeedBackend, validBackends))
	}

	switch c.FeedBackend {
	case "http":
		if c.FeedBaseURL == "" {
			errors = append(errors, "feed base URL cannot be empty when using http backend")
		} else if u, err := url.Parse(c.FeedBaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid feed base URL '%s': %v", c.FeedBaseURL, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid feed base URL scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
	case "aws":
		if c.AnalyticsBucket == "" {
			errors = append(errors, "ANALYTICS_BUCKET is required when using aws backend")
		}
		if c.IntentsTable == "" {
			errors = append(errors, "INTENTS_TABLE is required when using aws backend")
		}
	}

	if c.FeedTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid feed timeout %v: must be at least 100ms", c.FeedTimeout))
	} else if c.FeedTimeout > 2*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid feed timeout %v: must be at most 2 minutes", c.FeedTimeout))
	}

	if !slices.Contains(validPreferenceStores, c.PreferenceStore) {
		errors = append(errors, fmt.Sprintf("invalid preference store '%s': must be one of %v", c.PreferenceStore, validPreferenceStores))
	}

	if c.PreferenceStore == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite preference store")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ChartCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid chart cache size %d: must be at least 1", c.ChartCacheSize))
	}
	if c.ChartCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid chart cache TTL %v: must be at least 1 second", c.ChartCacheTTL))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validLogFormats))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AMQPEnabled reports whether feed events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
