package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/emmi-lili/tx-whisperer/internal/alert"
	"github.com/emmi-lili/tx-whisperer/internal/metrics"
)

const defaultReloadInterval = 30 * time.Second

// Provider serves the current flagged-entry snapshot and hot-reloads it
// when the backing file changes. A failed reload keeps the last good
// snapshot in service, so Snapshot never returns nil after the initial
// Load succeeds.
type Provider struct {
	path     string
	interval time.Duration
	logger   *slog.Logger
	alerter  alert.Alerter

	mu      sync.RWMutex
	snap    *Snapshot
	modTime time.Time
}

// NewProvider creates a provider for the flagged-entry file at path.
func NewProvider(path string, interval time.Duration, logger *slog.Logger) *Provider {
	if interval <= 0 {
		interval = defaultReloadInterval
	}
	return &Provider{
		path:     path,
		interval: interval,
		logger:   logger.With("component", "dataset"),
	}
}

// SetAlerter sets the optional alerter notified when a reload fails.
func (p *Provider) SetAlerter(a alert.Alerter) {
	p.alerter = a
}

// Load performs the initial load. It must succeed before the provider is
// handed to any consumer.
func (p *Provider) Load() error {
	info, err := os.Stat(p.path)
	if err != nil {
		return fmt.Errorf("stat dataset file: %w", err)
	}

	snap, err := Load(p.path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.snap = snap
	p.modTime = info.ModTime()
	p.mu.Unlock()

	p.observeSnapshot(snap)
	p.logger.Info("dataset loaded",
		"version", snap.Version,
		"entries", len(snap.Entries),
	)
	return nil
}

// Snapshot returns the current snapshot. The returned value is shared and
// must be treated as read-only.
func (p *Provider) Snapshot() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}

// Watch polls the backing file and reloads it when its mtime advances.
// It blocks until the context is cancelled.
func (p *Provider) Watch(ctx context.Context) error {
	p.logger.Info("dataset watcher started",
		"path", p.path,
		"poll_interval", p.interval,
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("dataset watcher stopping")
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Provider) poll(ctx context.Context) {
	info, err := os.Stat(p.path)
	if err != nil {
		p.reloadFailed(ctx, fmt.Errorf("stat dataset file: %w", err))
		return
	}

	p.mu.RLock()
	unchanged := !info.ModTime().After(p.modTime)
	p.mu.RUnlock()
	if unchanged {
		return
	}

	snap, err := Load(p.path)
	if err != nil {
		p.reloadFailed(ctx, err)
		return
	}

	p.mu.Lock()
	old := p.snap
	p.snap = snap
	p.modTime = info.ModTime()
	p.mu.Unlock()

	metrics.DatasetReloadsTotal.WithLabelValues("success").Inc()
	p.observeSnapshot(snap)
	p.logger.Info("dataset reloaded",
		"version", snap.Version,
		"entries", len(snap.Entries),
		"previous_version", old.Version,
	)
}

// reloadFailed logs and alerts but leaves the last good snapshot serving.
func (p *Provider) reloadFailed(ctx context.Context, err error) {
	metrics.DatasetReloadsTotal.WithLabelValues("error").Inc()
	p.logger.Warn("dataset reload failed, keeping last good snapshot", "error", err)

	if p.alerter == nil {
		return
	}
	_ = p.alerter.Send(ctx, alert.Alert{
		Type:    alert.AlertTypeDatasetReload,
		Key:     p.path,
		Title:   "Flagged-entry dataset reload failed",
		Message: err.Error(),
		Fields: map[string]string{
			"path":            p.path,
			"serving_version": p.Snapshot().Version,
		},
	})
}

func (p *Provider) observeSnapshot(snap *Snapshot) {
	metrics.DatasetEntries.Set(float64(len(snap.Entries)))
	metrics.DatasetLastReloadUnix.Set(float64(snap.LoadedAt.Unix()))
}
