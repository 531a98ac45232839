package model

// MatchStatus is the outcome of a contamination check.
type MatchStatus string

const (
	StatusClean   MatchStatus = "clean"
	StatusFlagged MatchStatus = "flagged"
	StatusUnknown MatchStatus = "unknown"
)

func (s MatchStatus) String() string {
	return string(s)
}

// Match pairs the normalized input with the flagged entry it hit.
type Match struct {
	Input string       `json:"input"`
	Entry FlaggedEntry `json:"entry"`
}

// MatchResult is computed fresh per check and carries no identity
// across calls.
type MatchResult struct {
	Status  MatchStatus `json:"status"`
	Matches []Match     `json:"matches"`
}
