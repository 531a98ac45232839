package model

import (
	"time"

	"github.com/google/uuid"
)

// CheckRecord is one remembered check, keyed by normalized value.
// Re-checking the same value refreshes the record instead of adding a
// duplicate.
type CheckRecord struct {
	ID             uuid.UUID   `db:"id"`
	Value          string      `db:"value"`
	RawInput       string      `db:"raw_input"`
	Chain          Chain       `db:"chain"`
	Kind           InputKind   `db:"kind"`
	Status         MatchStatus `db:"status"`
	MatchCount     int         `db:"match_count"`
	CheckCount     int64       `db:"check_count"`
	FirstCheckedAt time.Time   `db:"first_checked_at"`
	LastCheckedAt  time.Time   `db:"last_checked_at"`
}
