package model

// FlaggedEntry is one row of the externally supplied flagged-value
// table. Entries are read-only input data; nothing in this codebase
// creates, mutates, or deletes them outside of dataset loading.
type FlaggedEntry struct {
	Value  string    `json:"value"`
	Chain  Chain     `json:"chain"`
	Kind   InputKind `json:"kind"`
	Label  string    `json:"label"`
	Source string    `json:"source"`
}
