package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Options is the typed form of an agent's options bag.
type Options struct {
	// Timeout bounds browser launch and every navigation.
	Timeout time.Duration
	// UserAgent is sent by the browser tabs and the HTTP client.
	UserAgent string
	Headless  bool
}

func DefaultOptions() Options {
	return Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Headless:  true,
	}
}

// FromOptions decodes an untyped options bag. Recognised keys (any case) are
// "timeoutMs" and "userAgent"; everything else is ignored. Missing, empty or
// unusable values keep their defaults.
func FromOptions(bag map[string]any) Options {
	opts := DefaultOptions()

	for key, value := range bag {
		switch strings.ToLower(key) {
		case "timeoutms":
			if d, ok := millis(value); ok {
				opts.Timeout = d
			}
		case "useragent":
			if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
				opts.UserAgent = strings.TrimSpace(s)
			}
		}
	}

	return opts
}

func millis(value any) (time.Duration, bool) {
	var ms float64

	switch v := value.(type) {
	case int:
		ms = float64(v)
	case int32:
		ms = float64(v)
	case int64:
		ms = float64(v)
	case float64:
		ms = v
	case float32:
		ms = float64(v)
	case time.Duration:
		if v <= 0 {
			return 0, false
		}
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		ms = f
	default:
		return 0, false
	}

	if ms <= 0 {
		return 0, false
	}
	return time.Duration(ms * float64(time.Millisecond)), true
}

type Config struct {
	Agent     Options
	Server    ServerConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type RateLimitConfig struct {
	Min time.Duration
	Max time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Agent: Options{
			Timeout:   getDurationOrDefault("CRAWLER_TIMEOUT", DefaultTimeout),
			UserAgent: getEnvOrDefault("CRAWLER_USER_AGENT", DefaultUserAgent),
			Headless:  getBoolOrDefault("BROWSER_HEADLESS", true),
		},
		Server: ServerConfig{
			Port:            getIntOrDefault("SERVER_PORT", 8080),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getStringSliceOrDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:*", "https://localhost:*"}),
		},
		RateLimit: RateLimitConfig{
			Min: getDurationOrDefault("RATE_LIMIT_MIN", 1*time.Second),
			Max: getDurationOrDefault("RATE_LIMIT_MAX", 3*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Agent.Timeout <= 0 {
		return fmt.Errorf("CRAWLER_TIMEOUT must be positive")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.RateLimit.Min < 0 || c.RateLimit.Min > c.RateLimit.Max {
		return fmt.Errorf("RATE_LIMIT_MIN cannot be negative or greater than RATE_LIMIT_MAX")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
