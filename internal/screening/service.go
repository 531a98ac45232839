package screening

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/emmi-lili/tx-whisperer/internal/alert"
	"github.com/emmi-lili/tx-whisperer/internal/classify"
	"github.com/emmi-lili/tx-whisperer/internal/dataset"
	"github.com/emmi-lili/tx-whisperer/internal/domain/model"
	"github.com/emmi-lili/tx-whisperer/internal/metrics"
	"github.com/emmi-lili/tx-whisperer/internal/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	otelTrace "go.opentelemetry.io/otel/trace"
)

// ReportNote is attached to every check report so downstream consumers never
// mistake the verdict for an authoritative compliance decision.
const ReportNote = "format-based demo check against a static flagged-entry table; not a compliance decision"

// Detection is the result of classifying a single input.
type Detection struct {
	Input          string          `json:"input"`
	Normalized     string          `json:"normalized"`
	Chain          model.Chain     `json:"chain"`
	Kind           model.InputKind `json:"kind"`
	Valid          bool            `json:"valid"`
	DisplayAddress string          `json:"display_address,omitempty"`
}

// Report is the full result of one contamination check.
type Report struct {
	ID         uuid.UUID         `json:"id"`
	Input      string            `json:"input"`
	Normalized string            `json:"normalized"`
	Chain      model.Chain       `json:"chain"`
	Kind       model.InputKind   `json:"kind"`
	Status     model.MatchStatus `json:"status"`
	Matches    []model.Match     `json:"matches,omitempty"`
	Dataset    model.DatasetMeta `json:"dataset"`
	Cached     bool              `json:"cached"`
	CheckedAt  time.Time         `json:"checked_at"`
	Note       string            `json:"note"`
}

// DatasetProvider supplies the current flagged-entry snapshot.
type DatasetProvider interface {
	Snapshot() *dataset.Snapshot
}

// HistoryRecorder persists completed checks.
type HistoryRecorder interface {
	Record(ctx context.Context, rec model.CheckRecord) error
}

// ResultCache caches check reports keyed by dataset version and normalized
// value. Get returns (nil, nil) on a miss.
type ResultCache interface {
	Get(ctx context.Context, key string) (*Report, error)
	Set(ctx context.Context, key string, report *Report) error
}

// Service runs detections and contamination checks against the current
// flagged-entry snapshot. History, caching, and alerting are optional;
// their failures degrade the service to best effort, never the check itself.
type Service struct {
	dataset DatasetProvider
	history HistoryRecorder
	cache   ResultCache
	alerter alert.Alerter
	logger  *slog.Logger
}

// NewService creates a new screening service.
func NewService(provider DatasetProvider, logger *slog.Logger) *Service {
	return &Service{
		dataset: provider,
		logger:  logger.With("component", "screening"),
	}
}

// SetHistory sets the optional check history recorder.
func (s *Service) SetHistory(h HistoryRecorder) {
	s.history = h
}

// SetResultCache sets the optional result cache.
func (s *Service) SetResultCache(c ResultCache) {
	s.cache = c
}

// SetAlerter sets the optional alerter notified on flagged hits.
func (s *Service) SetAlerter(a alert.Alerter) {
	s.alerter = a
}

// Detect classifies raw input without consulting the flagged-entry table.
func (s *Service) Detect(ctx context.Context, raw string) Detection {
	_, span := tracing.Tracer("screening").Start(ctx, "screening.detect")
	defer span.End()

	normalized := classify.Normalize(raw)
	chain, kind := classify.Detect(normalized)

	span.SetAttributes(
		attribute.String("chain", chain.String()),
		attribute.String("kind", kind.String()),
	)
	metrics.DetectionsTotal.WithLabelValues(chain.String(), kind.String()).Inc()

	det := Detection{
		Input:      raw,
		Normalized: normalized,
		Chain:      chain,
		Kind:       kind,
		Valid:      chain != model.ChainUnknown,
	}
	if chain == model.ChainEVM && kind == model.InputKindAddress {
		det.DisplayAddress = classify.ChecksumAddress(normalized)
	}
	return det
}

// Check normalizes, classifies, and screens raw input against the current
// snapshot. It never returns an error: unclassifiable input yields a report
// with StatusUnknown, and failures in optional collaborators are logged and
// alerted but do not affect the verdict.
func (s *Service) Check(ctx context.Context, raw string) *Report {
	ctx, span := tracing.Tracer("screening").Start(ctx, "screening.check")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.CheckLatency.Observe(time.Since(start).Seconds())
	}()

	normalized := classify.Normalize(raw)
	chain, kind := classify.Detect(normalized)
	metrics.DetectionsTotal.WithLabelValues(chain.String(), kind.String()).Inc()

	snap := s.dataset.Snapshot()
	meta := snap.Meta()

	cacheKey := resultCacheKey(meta.Version, normalized)
	if s.cache == nil {
		metrics.ResultCacheRequests.WithLabelValues("bypass").Inc()
	} else {
		cached, err := s.cache.Get(ctx, cacheKey)
		switch {
		case err != nil:
			metrics.ResultCacheRequests.WithLabelValues("error").Inc()
			s.logger.Warn("result cache read failed", "error", err)
		case cached != nil:
			metrics.ResultCacheRequests.WithLabelValues("hit").Inc()
			cached.Input = raw
			cached.Cached = true
			s.finishCheck(ctx, span, cached)
			return cached
		default:
			metrics.ResultCacheRequests.WithLabelValues("miss").Inc()
		}
	}

	result := Match(normalized, chain, kind, snap.Entries)

	report := &Report{
		ID:         uuid.New(),
		Input:      raw,
		Normalized: normalized,
		Chain:      chain,
		Kind:       kind,
		Status:     result.Status,
		Matches:    result.Matches,
		Dataset:    meta,
		CheckedAt:  time.Now().UTC(),
		Note:       ReportNote,
	}

	s.finishCheck(ctx, span, report)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, report); err != nil {
			s.logger.Warn("result cache write failed", "error", err)
		}
	}

	return report
}

// Dataset returns metadata about the current flagged-entry snapshot.
func (s *Service) Dataset() model.DatasetMeta {
	return s.dataset.Snapshot().Meta()
}

// finishCheck applies the side effects shared by fresh and cached verdicts.
func (s *Service) finishCheck(ctx context.Context, span otelTrace.Span, report *Report) {
	metrics.ChecksTotal.WithLabelValues(string(report.Status)).Inc()
	span.SetAttributes(
		attribute.String("chain", report.Chain.String()),
		attribute.String("kind", report.Kind.String()),
		attribute.String("status", string(report.Status)),
		attribute.Bool("cached", report.Cached),
	)

	if report.Status == model.StatusFlagged {
		s.onFlagged(ctx, report)
	}

	s.recordHistory(ctx, report)
}

func (s *Service) onFlagged(ctx context.Context, report *Report) {
	for _, m := range report.Matches {
		metrics.FlaggedHitsTotal.WithLabelValues(m.Entry.Chain.String(), m.Entry.Source).Inc()
	}

	s.logger.Warn("flagged value checked",
		"value", report.Normalized,
		"chain", report.Chain,
		"kind", report.Kind,
		"matches", len(report.Matches),
	)

	if s.alerter == nil {
		return
	}
	first := report.Matches[0].Entry
	_ = s.alerter.Send(ctx, alert.Alert{
		Type:    alert.AlertTypeFlaggedHit,
		Chain:   report.Chain.String(),
		Key:     report.Normalized,
		Title:   "Flagged value checked",
		Message: fmt.Sprintf("input matched %d flagged entries", len(report.Matches)),
		Fields: map[string]string{
			"kind":    report.Kind.String(),
			"label":   first.Label,
			"source":  first.Source,
			"dataset": report.Dataset.Version,
		},
	})
}

func (s *Service) recordHistory(ctx context.Context, report *Report) {
	if s.history == nil {
		return
	}
	now := time.Now().UTC()
	rec := model.CheckRecord{
		ID:             report.ID,
		Value:          report.Normalized,
		RawInput:       report.Input,
		Chain:          report.Chain,
		Kind:           report.Kind,
		Status:         report.Status,
		MatchCount:     len(report.Matches),
		CheckCount:     1,
		FirstCheckedAt: now,
		LastCheckedAt:  now,
	}
	if err := s.history.Record(ctx, rec); err != nil {
		s.logger.Warn("history write failed", "value", report.Normalized, "error", err)
		if s.alerter != nil {
			_ = s.alerter.Send(ctx, alert.Alert{
				Type:    alert.AlertTypeStoreDegraded,
				Key:     "history",
				Title:   "Check history write failing",
				Message: fmt.Sprintf("failed to record check for %s: %v", report.Normalized, err),
			})
		}
	}
}

func resultCacheKey(version, normalized string) string {
	return "check:" + version + ":" + normalized
}
