package model

import "time"

// DatasetMeta describes the flagged-entry table a check ran against.
// It rides along in check responses so callers can tell which table
// version produced a verdict.
type DatasetMeta struct {
	Version    string    `json:"version"`
	EntryCount int       `json:"entry_count"`
	UpdatedAt  time.Time `json:"updated_at"`
	LoadedAt   time.Time `json:"loaded_at"`
}
