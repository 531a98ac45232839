package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emmi-lili/tx-whisperer/internal/domain/model"
)

// CheckHistoryRepo persists check records keyed by normalized value.
type CheckHistoryRepo struct {
	db *DB
}

func NewCheckHistoryRepo(db *DB) *CheckHistoryRepo {
	return &CheckHistoryRepo{db: db}
}

// Upsert inserts the record or, when the value was checked before, bumps the
// check count and refreshes the latest verdict. The original row keeps its
// id and first_checked_at.
func (r *CheckHistoryRepo) Upsert(ctx context.Context, rec model.CheckRecord) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO check_history (id, value, raw_input, chain, kind, status, match_count, check_count, first_checked_at, last_checked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (value) DO UPDATE SET
			raw_input = EXCLUDED.raw_input,
			chain = EXCLUDED.chain,
			kind = EXCLUDED.kind,
			status = EXCLUDED.status,
			match_count = EXCLUDED.match_count,
			check_count = check_history.check_count + EXCLUDED.check_count,
			last_checked_at = EXCLUDED.last_checked_at
	`, rec.ID, rec.Value, rec.RawInput, rec.Chain, rec.Kind, rec.Status,
		rec.MatchCount, rec.CheckCount, rec.FirstCheckedAt, rec.LastCheckedAt)
	if err != nil {
		return fmt.Errorf("upsert check record: %w", err)
	}
	return nil
}

// Recent returns check records ordered by last check time, newest first.
func (r *CheckHistoryRepo) Recent(ctx context.Context, limit int) ([]model.CheckRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, value, raw_input, chain, kind, status, match_count, check_count, first_checked_at, last_checked_at
		FROM check_history
		ORDER BY last_checked_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query check history: %w", err)
	}
	defer rows.Close()

	var recs []model.CheckRecord
	for rows.Next() {
		var rec model.CheckRecord
		if err := rows.Scan(
			&rec.ID, &rec.Value, &rec.RawInput, &rec.Chain, &rec.Kind,
			&rec.Status, &rec.MatchCount, &rec.CheckCount,
			&rec.FirstCheckedAt, &rec.LastCheckedAt,
		); err != nil {
			return nil, fmt.Errorf("scan check record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// FindByValue returns the record for a normalized value, or nil when the
// value has never been checked.
func (r *CheckHistoryRepo) FindByValue(ctx context.Context, value string) (*model.CheckRecord, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var rec model.CheckRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT id, value, raw_input, chain, kind, status, match_count, check_count, first_checked_at, last_checked_at
		FROM check_history
		WHERE value = $1
	`, value).Scan(
		&rec.ID, &rec.Value, &rec.RawInput, &rec.Chain, &rec.Kind,
		&rec.Status, &rec.MatchCount, &rec.CheckCount,
		&rec.FirstCheckedAt, &rec.LastCheckedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find check record: %w", err)
	}
	return &rec, nil
}
