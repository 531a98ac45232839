// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Dataset   DatasetConfig
	History   HistoryConfig
	DB        DBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Alert     AlertConfig
	Tracing   TracingConfig
	Log       LogConfig
}

type ServerConfig struct {
	APIAddr       string
	HealthAddr    string
	MaxInputBytes int
}

type DatasetConfig struct {
	Path           string
	ReloadInterval time.Duration // 0 disables background reloads
}

type HistoryConfig struct {
	Limit int
}

type DBConfig struct {
	URL                string // empty disables durable history
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	StatementTimeoutMS int
}

type RedisConfig struct {
	URL string // empty disables the result cache
	TTL time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type AlertConfig struct {
	SlackWebhookURL string
	WebhookURL      string
	Cooldown        time.Duration
}

type TracingConfig struct {
	OTLPEndpoint string // empty keeps the noop tracer
	Insecure     bool
	SampleRatio  float64
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			APIAddr:       getEnv("API_ADDR", ":8080"),
			HealthAddr:    getEnv("HEALTH_ADDR", ":9090"),
			MaxInputBytes: getEnvInt("MAX_INPUT_BYTES", 4096),
		},
		Dataset: DatasetConfig{
			Path:           getEnv("DATASET_PATH", ""),
			ReloadInterval: getEnvDuration("DATASET_RELOAD_INTERVAL", 30*time.Second),
		},
		History: HistoryConfig{
			Limit: getEnvInt("HISTORY_LIMIT", 100),
		},
		DB: DBConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:    time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
			StatementTimeoutMS: getEnvInt("DB_STATEMENT_TIMEOUT_MS", 30000),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
			TTL: getEnvDuration("RESULT_CACHE_TTL", 5*time.Minute),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
			Burst: getEnvInt("RATE_LIMIT_BURST", 20),
		},
		Alert: AlertConfig{
			SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
			WebhookURL:      getEnv("ALERT_WEBHOOK_URL", ""),
			Cooldown:        getEnvDuration("ALERT_COOLDOWN", 5*time.Minute),
		},
		Tracing: TracingConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:     getEnvBool("OTEL_INSECURE", true),
			SampleRatio:  getEnvFloat("OTEL_TRACE_SAMPLE_RATIO", 1),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.APIAddr == "" {
		return fmt.Errorf("API_ADDR is required")
	}
	if c.Server.HealthAddr == "" {
		return fmt.Errorf("HEALTH_ADDR is required")
	}
	if c.Server.MaxInputBytes <= 0 {
		return fmt.Errorf("MAX_INPUT_BYTES must be positive")
	}
	if c.Dataset.Path == "" {
		return fmt.Errorf("DATASET_PATH is required")
	}
	if c.Dataset.ReloadInterval < 0 {
		return fmt.Errorf("DATASET_RELOAD_INTERVAL must not be negative")
	}
	if c.History.Limit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive")
	}
	if c.RateLimit.RPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}
	if c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive")
	}
	if c.Redis.TTL <= 0 {
		return fmt.Errorf("RESULT_CACHE_TTL must be positive")
	}
	if c.Alert.Cooldown < 0 {
		return fmt.Errorf("ALERT_COOLDOWN must not be negative")
	}
	if c.Tracing.SampleRatio <= 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("OTEL_TRACE_SAMPLE_RATIO must be in (0, 1]")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
