// Package dataset loads the flagged-entry table from a YAML file and serves
// it to the rest of the service as immutable snapshots.
package dataset

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/emmi-lili/tx-whisperer/internal/domain/model"
)

// Snapshot is one immutable load of the flagged-entry table. Callers must
// treat Entries as read-only.
type Snapshot struct {
	Version   string
	UpdatedAt time.Time
	Entries   []model.FlaggedEntry
	LoadedAt  time.Time
}

// Meta returns the snapshot's metadata for inclusion in check reports.
func (s *Snapshot) Meta() model.DatasetMeta {
	return model.DatasetMeta{
		Version:    s.Version,
		EntryCount: len(s.Entries),
		UpdatedAt:  s.UpdatedAt,
		LoadedAt:   s.LoadedAt,
	}
}

// fileFormat mirrors the on-disk YAML document.
type fileFormat struct {
	Version   string      `yaml:"version"`
	UpdatedAt time.Time   `yaml:"updated_at"`
	Entries   []fileEntry `yaml:"entries"`
}

type fileEntry struct {
	Value  string `yaml:"value"`
	Chain  string `yaml:"chain"`
	Kind   string `yaml:"kind"`
	Label  string `yaml:"label"`
	Source string `yaml:"source"`
}

// Load reads and validates the flagged-entry file at path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}
	return Parse(data)
}

// Parse validates raw YAML bytes and builds a snapshot. Every entry must
// carry a non-empty value and chain/kind labels from the closed enumerations;
// a single bad entry rejects the whole document so a partial table is never
// served.
func Parse(data []byte) (*Snapshot, error) {
	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse dataset yaml: %w", err)
	}

	if doc.Version == "" {
		return nil, fmt.Errorf("dataset version is required")
	}

	entries := make([]model.FlaggedEntry, 0, len(doc.Entries))
	for i, e := range doc.Entries {
		if e.Value == "" {
			return nil, fmt.Errorf("dataset entry %d: value is required", i)
		}
		chain, err := model.ParseChain(e.Chain)
		if err != nil {
			return nil, fmt.Errorf("dataset entry %d (%s): %w", i, e.Value, err)
		}
		if !chain.Known() {
			return nil, fmt.Errorf("dataset entry %d (%s): chain must be concrete, got %q", i, e.Value, e.Chain)
		}
		kind, err := model.ParseInputKind(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("dataset entry %d (%s): %w", i, e.Value, err)
		}
		if !kind.Known() {
			return nil, fmt.Errorf("dataset entry %d (%s): kind must be concrete, got %q", i, e.Value, e.Kind)
		}
		entries = append(entries, model.FlaggedEntry{
			Value:  e.Value,
			Chain:  chain,
			Kind:   kind,
			Label:  e.Label,
			Source: e.Source,
		})
	}

	return &Snapshot{
		Version:   doc.Version,
		UpdatedAt: doc.UpdatedAt,
		Entries:   entries,
		LoadedAt:  time.Now().UTC(),
	}, nil
}
