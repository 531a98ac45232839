package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/emmi-lili/tx-whisperer/internal/domain/model"
	"github.com/emmi-lili/tx-whisperer/internal/screening"
)

// SweepResult holds the outcome of re-screening stored checks against the
// current flagged-entry dataset.
type SweepResult struct {
	Unchanged []string         `json:"unchanged"`
	Changed   []ChangedVerdict `json:"changed"`
}

// ChangedVerdict records one stored value whose verdict moved under the
// current dataset.
type ChangedVerdict struct {
	Value      string `json:"value"`
	Chain      string `json:"chain"`
	Kind       string `json:"kind"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	MatchCount int    `json:"match_count"`
}

// HasChanges returns true if any stored verdict moved.
func (r *SweepResult) HasChanges() bool {
	return len(r.Changed) > 0
}

// sweepRecords re-screens each stored record and splits the results into
// unchanged and changed verdicts. Classification runs fresh, so a record
// whose chain or kind was stored under an older detector also surfaces here
// when its status moves.
func sweepRecords(records []model.CheckRecord, entries []model.FlaggedEntry) SweepResult {
	var result SweepResult

	for _, rec := range records {
		mr := screening.Check(rec.Value, entries)
		if mr.Status == rec.Status {
			result.Unchanged = append(result.Unchanged, rec.Value)
			continue
		}
		result.Changed = append(result.Changed, ChangedVerdict{
			Value:      rec.Value,
			Chain:      rec.Chain.String(),
			Kind:       rec.Kind.String(),
			OldStatus:  string(rec.Status),
			NewStatus:  string(mr.Status),
			MatchCount: len(mr.Matches),
		})
	}

	// Sort for deterministic output
	sort.Strings(result.Unchanged)
	sort.Slice(result.Changed, func(i, j int) bool {
		return result.Changed[i].Value < result.Changed[j].Value
	})

	return result
}

// printTextReport writes a human-readable report to w.
func printTextReport(w io.Writer, datasetVersion string, entryCount, recordCount int, result SweepResult) {
	fmt.Fprintln(w, "=== Re-screening Sweep Report ===")
	fmt.Fprintf(w, "Dataset version: %s\n", datasetVersion)
	fmt.Fprintf(w, "Dataset entries: %d\n", entryCount)
	fmt.Fprintf(w, "Records swept: %d\n", recordCount)
	fmt.Fprintf(w, "Unchanged: %d\n", len(result.Unchanged))
	fmt.Fprintf(w, "Changed: %d\n", len(result.Changed))

	if len(result.Changed) > 0 {
		fmt.Fprintln(w, "\n--- Changed verdicts ---")
		for _, c := range result.Changed {
			fmt.Fprintf(w, "  %s (%s/%s): %s -> %s (matches=%d)\n",
				c.Value, c.Chain, c.Kind, c.OldStatus, c.NewStatus, c.MatchCount)
		}
	}

	fmt.Fprintln(w)
	if !result.HasChanges() {
		fmt.Fprintln(w, "Result: UNCHANGED")
	} else {
		fmt.Fprintln(w, "Result: CHANGED")
	}
}

// printJSONReport writes a JSON report to w.
func printJSONReport(w io.Writer, datasetVersion string, entryCount, recordCount int, result SweepResult) error {
	report := struct {
		DatasetVersion string      `json:"dataset_version"`
		DatasetEntries int         `json:"dataset_entries"`
		RecordsSwept   int         `json:"records_swept"`
		Result         string      `json:"result"`
		Sweep          SweepResult `json:"sweep"`
	}{
		DatasetVersion: datasetVersion,
		DatasetEntries: entryCount,
		RecordsSwept:   recordCount,
		Sweep:          result,
	}
	if result.HasChanges() {
		report.Result = "CHANGED"
	} else {
		report.Result = "UNCHANGED"
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
