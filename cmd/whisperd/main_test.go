package main

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmi-lili/tx-whisperer/internal/alert"
	"github.com/emmi-lili/tx-whisperer/internal/config"
	"github.com/emmi-lili/tx-whisperer/internal/dataset"
)

func TestBuildAlerter_NoChannelsConfigured(t *testing.T) {
	a := buildAlerter(config.AlertConfig{}, slog.Default())
	assert.IsType(t, &alert.NoopAlerter{}, a)
}

func TestBuildAlerter_SlackOnly(t *testing.T) {
	a := buildAlerter(config.AlertConfig{
		SlackWebhookURL: "https://hooks.slack.com/services/T000/B000/XXX",
		Cooldown:        time.Minute,
	}, slog.Default())
	assert.IsType(t, &alert.MultiAlerter{}, a)
}

func TestBuildAlerter_BothChannels(t *testing.T) {
	a := buildAlerter(config.AlertConfig{
		SlackWebhookURL: "https://hooks.slack.com/services/T000/B000/XXX",
		WebhookURL:      "https://alerts.internal.example/hook",
		Cooldown:        time.Minute,
	}, slog.Default())
	assert.IsType(t, &alert.MultiAlerter{}, a)
}

func writeDatasetFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flagged.yaml")
	doc := `version: "2026-08-01"
updated_at: 2026-08-01T00:00:00Z
entries:
  - value: "0x1111111111111111111111111111111111111111"
    chain: evm
    kind: address
    label: test entry
    source: unit
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestHealthMux_Healthz(t *testing.T) {
	provider := dataset.NewProvider("unused.yaml", 0, slog.Default())
	mux := newHealthMux(provider, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHealthMux_ReadyzBeforeFirstLoad(t *testing.T) {
	provider := dataset.NewProvider("unused.yaml", 0, slog.Default())
	mux := newHealthMux(provider, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthMux_ReadyzAfterLoad(t *testing.T) {
	provider := dataset.NewProvider(writeDatasetFile(t), 0, slog.Default())
	require.NoError(t, provider.Load())
	mux := newHealthMux(provider, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHealthMux_Metrics(t *testing.T) {
	provider := dataset.NewProvider("unused.yaml", 0, slog.Default())
	mux := newHealthMux(provider, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
}
