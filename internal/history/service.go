package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emmi-lili/tx-whisperer/internal/domain/model"
	"github.com/emmi-lili/tx-whisperer/internal/metrics"
)

// Repository mirrors check records to durable storage.
type Repository interface {
	Upsert(ctx context.Context, rec model.CheckRecord) error
	Recent(ctx context.Context, limit int) ([]model.CheckRecord, error)
	FindByValue(ctx context.Context, value string) (*model.CheckRecord, error)
}

// Service layers the in-memory MRU over an optional durable mirror. The
// memory write always succeeds; only the mirror can fail.
type Service struct {
	mru    *MRU
	repo   Repository
	logger *slog.Logger
}

// NewService creates a history service bounded to capacity in-memory records.
func NewService(capacity int, logger *slog.Logger) *Service {
	return &Service{
		mru:    NewMRU(capacity),
		logger: logger.With("component", "history"),
	}
}

// SetRepository sets the optional durable mirror.
func (s *Service) SetRepository(repo Repository) {
	s.repo = repo
}

// Record stores the check in memory and mirrors it to the repository when
// one is configured. The returned error reports only a failed mirror write.
func (s *Service) Record(ctx context.Context, rec model.CheckRecord) error {
	s.mru.Record(rec)
	metrics.HistorySize.Set(float64(s.mru.Len()))

	if s.repo == nil {
		return nil
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		metrics.HistoryWriteErrors.WithLabelValues("postgres").Inc()
		return fmt.Errorf("mirror check record: %w", err)
	}
	return nil
}

// Recent returns the most recent checks, newest first. It prefers the
// durable mirror, which survives restarts, and falls back to memory when
// the mirror read fails.
func (s *Service) Recent(ctx context.Context, limit int) []model.CheckRecord {
	if s.repo != nil {
		recs, err := s.repo.Recent(ctx, limit)
		if err == nil {
			return recs
		}
		s.logger.Warn("history read from store failed, serving from memory", "error", err)
	}
	return s.mru.Recent(limit)
}

// Find returns the record for a normalized value, or nil when the value has
// never been checked. The durable mirror is consulted first because memory
// only holds the most recent records.
func (s *Service) Find(ctx context.Context, value string) *model.CheckRecord {
	if s.repo != nil {
		rec, err := s.repo.FindByValue(ctx, value)
		if err == nil {
			return rec
		}
		s.logger.Warn("history lookup from store failed, serving from memory", "error", err, "value", value)
	}
	if rec, ok := s.mru.Get(value); ok {
		return &rec
	}
	return nil
}

// Len returns the number of distinct values held in memory.
func (s *Service) Len() int {
	return s.mru.Len()
}
