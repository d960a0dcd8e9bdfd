package config

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP proxy
	Port               string
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	// CIDRs whose X-Forwarded-For header is trusted for client IPs.
	TrustedProxies     []string

	// Upstream provider
	OpenAIAPIKey      string
	OpenAIAPIURL      string
	OpenAIModel       string
	OpenAITemperature float64
	UpstreamTimeout   time.Duration

	// CLI chat goes through the proxy when set, otherwise direct.
	ProxyURL string

	// Persistence
	StoreBackend   string
	StorePath      string
	StoreCacheSize int
	MongoURI       string
	MongoDatabase  string

	// AMQP advisory events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string

	LogLevel string
}

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

var validBackends = []string{BackendMemory, BackendFile, BackendSQLite, BackendMongo}

func Load() *Config {
	backend := getEnv("STORE_BACKEND", BackendSQLite)
	defaultPath := "./data/expenseminimizer.db"
	if backend == BackendFile {
		defaultPath = "./data/store"
	}

	return &Config{
		Port:               getEnv("PORT", "5000"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES", nil),

		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIAPIURL:      getEnv("OPENAI_API_URL", "https://api.openai.com/v1/chat/completions"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAITemperature: getEnvFloat("OPENAI_TEMPERATURE", 0.7),
		UpstreamTimeout:   getEnvDuration("UPSTREAM_TIMEOUT", 60*time.Second),

		ProxyURL: getEnv("PROXY_URL", ""),

		StoreBackend:   backend,
		StorePath:      getEnv("STORE_PATH", defaultPath),
		StoreCacheSize: getEnvInt("STORE_CACHE_SIZE", 64),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGO_DATABASE", "expenseminimizer"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expenseminimizer"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "advisory_events"),

		GoogleSpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:       getEnv("GOOGLE_SHEET_NAME", "Expenses"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks the settings shared by every binary and returns all
// problems at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.OpenAIAPIURL != "" {
		if u, err := url.Parse(c.OpenAIAPIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid OPENAI_API_URL '%s': must be an http(s) URL", c.OpenAIAPIURL))
		}
	}
	if math.IsNaN(c.OpenAITemperature) || c.OpenAITemperature < 0 || c.OpenAITemperature > 2 {
		errors = append(errors, fmt.Sprintf("invalid temperature %v: must be between 0 and 2", c.OpenAITemperature))
	}
	if c.UpstreamTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid upstream timeout %v: must be at least 1 second", c.UpstreamTimeout))
	} else if c.UpstreamTimeout > 10*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid upstream timeout %v: must be at most 10 minutes", c.UpstreamTimeout))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}

	if c.ProxyURL != "" {
		if u, err := url.Parse(c.ProxyURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid PROXY_URL '%s': must be an http(s) URL", c.ProxyURL))
		}
	}

	isValidBackend := false
	for _, backend := range validBackends {
		if c.StoreBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid store backend '%s': must be one of %v", c.StoreBackend, validBackends))
	}

	switch c.StoreBackend {
	case BackendSQLite, BackendFile:
		if c.StorePath == "" {
			errors = append(errors, fmt.Sprintf("store path cannot be empty when using %s backend", c.StoreBackend))
		} else {
			dir := c.StorePath
			if c.StoreBackend == BackendSQLite {
				dir = filepath.Dir(c.StorePath)
			}
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create store directory '%s': %v", dir, err))
					}
				}
			}
		}
	case BackendMongo:
		if !strings.HasPrefix(c.MongoURI, "mongodb://") && !strings.HasPrefix(c.MongoURI, "mongodb+srv://") {
			errors = append(errors, fmt.Sprintf("invalid MONGO_URI '%s': must start with mongodb:// or mongodb+srv://", c.MongoURI))
		}
		if c.MongoDatabase == "" {
			errors = append(errors, "MONGO_DATABASE cannot be empty when using mongo backend")
		}
	}
	if c.StoreCacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid store cache size %d: must not be negative", c.StoreCacheSize))
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

	if c.GoogleCredentialsFile != "" {
		if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ValidateProxy adds the checks only the proxy needs.
func (c *Config) ValidateProxy() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		return fmt.Errorf("configuration validation failed:\n- OPENAI_API_KEY is required")
	}
	return nil
}

// SheetsConfigured reports whether a spreadsheet export target is set.
func (c *Config) SheetsConfigured() bool {
	return c.GoogleSpreadsheetID != "" && (c.GoogleCredentialsFile != "" || c.GoogleCredentialsJSON != "")
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
