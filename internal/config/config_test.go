package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a baseline that passes validate(), for mutation tests.
func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{APIAddr: ":8080", HealthAddr: ":9090", MaxInputBytes: 4096},
		Dataset:   DatasetConfig{Path: "/data/flagged.yaml", ReloadInterval: 30 * time.Second},
		History:   HistoryConfig{Limit: 100},
		Redis:     RedisConfig{TTL: 5 * time.Minute},
		RateLimit: RateLimitConfig{RPS: 10, Burst: 20},
		Alert:     AlertConfig{Cooldown: 5 * time.Minute},
		Tracing:   TracingConfig{SampleRatio: 1},
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Clear env vars that might interfere
	t.Setenv("DATASET_PATH", "/etc/tx-whisperer/flagged.yaml")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.APIAddr)
	assert.Equal(t, ":9090", cfg.Server.HealthAddr)
	assert.Equal(t, 4096, cfg.Server.MaxInputBytes)
	assert.Equal(t, "/etc/tx-whisperer/flagged.yaml", cfg.Dataset.Path)
	assert.Equal(t, 30*time.Second, cfg.Dataset.ReloadInterval)
	assert.Equal(t, 100, cfg.History.Limit)
	assert.Empty(t, cfg.DB.URL)
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.Equal(t, 5, cfg.DB.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, 30000, cfg.DB.StatementTimeoutMS)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 10.0, cfg.RateLimit.RPS)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.Empty(t, cfg.Alert.SlackWebhookURL)
	assert.Empty(t, cfg.Alert.WebhookURL)
	assert.Equal(t, 5*time.Minute, cfg.Alert.Cooldown)
	assert.Empty(t, cfg.Tracing.OTLPEndpoint)
	assert.True(t, cfg.Tracing.Insecure)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("API_ADDR", ":8181")
	t.Setenv("HEALTH_ADDR", ":9191")
	t.Setenv("MAX_INPUT_BYTES", "256")
	t.Setenv("DATASET_PATH", "/data/flagged.yaml")
	t.Setenv("DATASET_RELOAD_INTERVAL", "2m")
	t.Setenv("HISTORY_LIMIT", "50")
	t.Setenv("DATABASE_URL", "postgres://test:test@db:5432/whisperer")
	t.Setenv("DB_MAX_OPEN_CONNS", "10")
	t.Setenv("DB_MAX_IDLE_CONNS", "2")
	t.Setenv("DB_CONN_MAX_LIFETIME_MIN", "15")
	t.Setenv("DB_STATEMENT_TIMEOUT_MS", "45000")
	t.Setenv("REDIS_URL", "redis://redis:6379")
	t.Setenv("RESULT_CACHE_TTL", "90s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/x")
	t.Setenv("ALERT_WEBHOOK_URL", "https://alerts.example.com/hook")
	t.Setenv("ALERT_COOLDOWN", "10m")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_INSECURE", "false")
	t.Setenv("OTEL_TRACE_SAMPLE_RATIO", "0.25")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8181", cfg.Server.APIAddr)
	assert.Equal(t, ":9191", cfg.Server.HealthAddr)
	assert.Equal(t, 256, cfg.Server.MaxInputBytes)
	assert.Equal(t, "/data/flagged.yaml", cfg.Dataset.Path)
	assert.Equal(t, 2*time.Minute, cfg.Dataset.ReloadInterval)
	assert.Equal(t, 50, cfg.History.Limit)
	assert.Equal(t, "postgres://test:test@db:5432/whisperer", cfg.DB.URL)
	assert.Equal(t, 10, cfg.DB.MaxOpenConns)
	assert.Equal(t, 2, cfg.DB.MaxIdleConns)
	assert.Equal(t, 15*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, 45000, cfg.DB.StatementTimeoutMS)
	assert.Equal(t, "redis://redis:6379", cfg.Redis.URL)
	assert.Equal(t, 90*time.Second, cfg.Redis.TTL)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
	assert.Equal(t, "https://hooks.slack.com/services/T/B/x", cfg.Alert.SlackWebhookURL)
	assert.Equal(t, "https://alerts.example.com/hook", cfg.Alert.WebhookURL)
	assert.Equal(t, 10*time.Minute, cfg.Alert.Cooldown)
	assert.Equal(t, "collector:4317", cfg.Tracing.OTLPEndpoint)
	assert.False(t, cfg.Tracing.Insecure)
	assert.Equal(t, 0.25, cfg.Tracing.SampleRatio)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingDatasetPath(t *testing.T) {
	t.Setenv("DATASET_PATH", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATASET_PATH")
}

func TestLoad_ZeroReloadIntervalDisablesReloads(t *testing.T) {
	t.Setenv("DATASET_PATH", "/data/flagged.yaml")
	t.Setenv("DATASET_RELOAD_INTERVAL", "0s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Dataset.ReloadInterval)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty api addr", func(c *Config) { c.Server.APIAddr = "" }, "API_ADDR"},
		{"empty health addr", func(c *Config) { c.Server.HealthAddr = "" }, "HEALTH_ADDR"},
		{"zero max input", func(c *Config) { c.Server.MaxInputBytes = 0 }, "MAX_INPUT_BYTES"},
		{"negative reload interval", func(c *Config) { c.Dataset.ReloadInterval = -time.Second }, "DATASET_RELOAD_INTERVAL"},
		{"missing dataset path", func(c *Config) { c.Dataset.Path = "" }, "DATASET_PATH"},
		{"zero history limit", func(c *Config) { c.History.Limit = 0 }, "HISTORY_LIMIT"},
		{"zero rate limit rps", func(c *Config) { c.RateLimit.RPS = 0 }, "RATE_LIMIT_RPS"},
		{"zero rate limit burst", func(c *Config) { c.RateLimit.Burst = 0 }, "RATE_LIMIT_BURST"},
		{"zero cache ttl", func(c *Config) { c.Redis.TTL = 0 }, "RESULT_CACHE_TTL"},
		{"negative alert cooldown", func(c *Config) { c.Alert.Cooldown = -time.Minute }, "ALERT_COOLDOWN"},
		{"zero sample ratio", func(c *Config) { c.Tracing.SampleRatio = 0 }, "OTEL_TRACE_SAMPLE_RATIO"},
		{"oversized sample ratio", func(c *Config) { c.Tracing.SampleRatio = 1.5 }, "OTEL_TRACE_SAMPLE_RATIO"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			require.NoError(t, cfg.validate())

			tc.mutate(cfg)

			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestGetEnvInt_InvalidValue(t *testing.T) {
	t.Setenv("TEST_INT", "not_a_number")
	result := getEnvInt("TEST_INT", 42)
	assert.Equal(t, 42, result)
}

func TestGetEnvInt_ValidValue(t *testing.T) {
	t.Setenv("TEST_INT", "99")
	result := getEnvInt("TEST_INT", 42)
	assert.Equal(t, 99, result)
}

func TestGetEnvInt_EmptyValue(t *testing.T) {
	t.Setenv("TEST_INT", "")
	result := getEnvInt("TEST_INT", 42)
	assert.Equal(t, 42, result)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DUR", "45s")
	assert.Equal(t, 45*time.Second, getEnvDuration("TEST_DUR", time.Minute))

	t.Setenv("TEST_DUR", "not-a-duration")
	assert.Equal(t, time.Minute, getEnvDuration("TEST_DUR", time.Minute))

	t.Setenv("TEST_DUR", "")
	assert.Equal(t, time.Minute, getEnvDuration("TEST_DUR", time.Minute))
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "false")
	assert.False(t, getEnvBool("TEST_BOOL", true))

	t.Setenv("TEST_BOOL", "not-a-bool")
	assert.True(t, getEnvBool("TEST_BOOL", true))
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.5")
	assert.Equal(t, 0.5, getEnvFloat("TEST_FLOAT", 10))

	t.Setenv("TEST_FLOAT", "nope")
	assert.Equal(t, 10.0, getEnvFloat("TEST_FLOAT", 10))
}
