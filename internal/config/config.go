package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Port       string `yaml:"port"`
	LogLevel   string `yaml:"log_level"`
	WSOrigin   string `yaml:"ws_allowed_origin"`
	NumWorkers int    `yaml:"num_workers"`
	QueueSize  int    `yaml:"queue_size"`

	StoreBackend   string `yaml:"store_backend"`
	DatabaseURL    string `yaml:"database_url"`
	RedisURL       string `yaml:"redis_url"`
	RedisKeyPrefix string `yaml:"redis_key_prefix"`

	SlackBotToken      string `yaml:"slack_bot_token"`
	SlackSigningSecret string `yaml:"slack_signing_secret"`
	SlackAPIURL        string `yaml:"slack_api_url"`

	NotifyMaxAttempts int           `yaml:"notify_max_attempts"`
	NotifyBaseBackoff time.Duration `yaml:"notify_base_backoff"`
	// EventTimeout bounds the handling of one inbound event, every
	// notification and retry it triggers included.
	EventTimeout      time.Duration `yaml:"event_timeout"`
}

// ErrMissingSlackToken is returned by RequireSlack when no bot token is set.
var ErrMissingSlackToken = errors.New("SLACK_BOT_TOKEN is required")

func defaults() *Config {
	return &Config{
		Port:              "8080",
		LogLevel:          "info",
		NumWorkers:        10,
		QueueSize:         1000,
		StoreBackend:      "memory",
		NotifyMaxAttempts: 3,
		NotifyBaseBackoff: 500 * time.Millisecond,
		EventTimeout:      2 * time.Minute,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE if set, then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.WSOrigin = getEnv("WS_ALLOWED_ORIGIN", cfg.WSOrigin)
	cfg.NumWorkers = getEnvInt("NUM_WORKERS", cfg.NumWorkers)
	cfg.QueueSize = getEnvInt("QUEUE_SIZE", cfg.QueueSize)
	cfg.StoreBackend = strings.ToLower(getEnv("STORE_BACKEND", cfg.StoreBackend))
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RedisKeyPrefix = getEnv("REDIS_KEY_PREFIX", cfg.RedisKeyPrefix)
	cfg.SlackBotToken = getEnv("SLACK_BOT_TOKEN", cfg.SlackBotToken)
	cfg.SlackSigningSecret = getEnv("SLACK_SIGNING_SECRET", cfg.SlackSigningSecret)
	cfg.SlackAPIURL = getEnv("SLACK_API_URL", cfg.SlackAPIURL)
	cfg.NotifyMaxAttempts = getEnvInt("NOTIFY_MAX_ATTEMPTS", cfg.NotifyMaxAttempts)
	cfg.NotifyBaseBackoff = getEnvDuration("NOTIFY_BASE_BACKOFF", cfg.NotifyBaseBackoff)
	cfg.EventTimeout = getEnvDuration("EVENT_TIMEOUT", cfg.EventTimeout)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis backend")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.NumWorkers < 1 {
		return fmt.Errorf("NUM_WORKERS must be positive, got %d", c.NumWorkers)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("QUEUE_SIZE must be positive, got %d", c.QueueSize)
	}
	if c.NotifyMaxAttempts < 1 {
		return fmt.Errorf("NOTIFY_MAX_ATTEMPTS must be at least 1, got %d", c.NotifyMaxAttempts)
	}
	if c.EventTimeout <= 0 {
		return fmt.Errorf("EVENT_TIMEOUT must be positive, got %v", c.EventTimeout)
	}
	return nil
}

// RequireSlack reports whether the Slack credentials needed to serve events
// are present.
func (c *Config) RequireSlack() error {
	if c.SlackBotToken == "" {
		return ErrMissingSlackToken
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}
