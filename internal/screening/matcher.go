package screening

import (
	"strings"

	"github.com/emmi-lili/tx-whisperer/internal/classify"
	"github.com/emmi-lili/tx-whisperer/internal/domain/model"
)

// Match compares a normalized input against the flagged-entry table and
// returns the verdict. The table is read-only; the result is computed fresh
// on every call.
//
// Matching runs in two passes. The primary pass requires the entry to agree
// with the detected chain and kind. The secondary pass accepts a value-only
// match regardless of chain/kind, which catches entries whose recorded labels
// disagree with the detector's verdict; entries already captured by the
// primary pass are not duplicated.
//
// Value equality is case-insensitive when the input is hex-shaped and exact
// otherwise, since base58 is case-sensitive.
func Match(normalized string, chain model.Chain, kind model.InputKind, entries []model.FlaggedEntry) model.MatchResult {
	if chain == model.ChainUnknown || kind == model.InputKindUnknown {
		return model.MatchResult{Status: model.StatusUnknown}
	}

	hexShaped := classify.IsHexShaped(normalized)

	var matches []model.Match
	matched := make(map[int]bool)

	for i, entry := range entries {
		if entry.Chain != chain || entry.Kind != kind {
			continue
		}
		if valuesEqual(normalized, entry.Value, hexShaped) {
			matches = append(matches, model.Match{Input: normalized, Entry: entry})
			matched[i] = true
		}
	}

	for i, entry := range entries {
		if matched[i] {
			continue
		}
		if valuesEqual(normalized, entry.Value, hexShaped) {
			matches = append(matches, model.Match{Input: normalized, Entry: entry})
		}
	}

	status := model.StatusClean
	if len(matches) > 0 {
		status = model.StatusFlagged
	}
	return model.MatchResult{Status: status, Matches: matches}
}

func valuesEqual(input, value string, hexShaped bool) bool {
	if hexShaped {
		return strings.EqualFold(input, value)
	}
	return input == value
}

// Check normalizes and classifies raw input, then matches it against the
// flagged-entry table. It is total: input that cannot be classified yields
// StatusUnknown with no matches rather than an error.
func Check(raw string, entries []model.FlaggedEntry) model.MatchResult {
	normalized := classify.Normalize(raw)
	chain, kind := classify.Detect(normalized)
	return Match(normalized, chain, kind, entries)
}
