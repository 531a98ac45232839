package dataset

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmi-lili/tx-whisperer/internal/domain/model"
)

const validDoc = `version: "2026-08-01"
updated_at: 2026-08-01T00:00:00Z
entries:
  - value: "0x7f367cc41522ce07553e823bf3be79a889debe1b"
    chain: evm
    kind: address
    label: demo-sanctions
    source: demo
  - value: "e3bf3d07d4b0375638d5f1db5255fe07ba2c4cb067cd81b84ee974b6585fb468"
    chain: bitcoin
    kind: transaction
    label: demo-mixer
    source: demo
  - value: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
    chain: solana
    kind: address
    label: demo-scam
    source: demo
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeDataset(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "flagged.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse_Valid(t *testing.T) {
	snap, err := Parse([]byte(validDoc))
	require.NoError(t, err)

	assert.Equal(t, "2026-08-01", snap.Version)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), snap.UpdatedAt.UTC())
	require.Len(t, snap.Entries, 3)

	first := snap.Entries[0]
	assert.Equal(t, "0x7f367cc41522ce07553e823bf3be79a889debe1b", first.Value)
	assert.Equal(t, model.ChainEVM, first.Chain)
	assert.Equal(t, model.InputKindAddress, first.Kind)
	assert.Equal(t, "demo-sanctions", first.Label)
	assert.Equal(t, "demo", first.Source)

	meta := snap.Meta()
	assert.Equal(t, "2026-08-01", meta.Version)
	assert.Equal(t, 3, meta.EntryCount)
	assert.False(t, meta.LoadedAt.IsZero())
}

func TestParse_EmptyEntries(t *testing.T) {
	snap, err := Parse([]byte("version: \"v1\"\nentries: []\n"))
	require.NoError(t, err)
	assert.Empty(t, snap.Entries)
	assert.Equal(t, 0, snap.Meta().EntryCount)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "not yaml",
			doc:     "{{{",
			wantErr: "parse dataset yaml",
		},
		{
			name:    "missing version",
			doc:     "entries: []\n",
			wantErr: "version is required",
		},
		{
			name: "missing value",
			doc: `version: "v1"
entries:
  - value: ""
    chain: evm
    kind: address
`,
			wantErr: "value is required",
		},
		{
			name: "bad chain",
			doc: `version: "v1"
entries:
  - value: "x"
    chain: dogecoin
    kind: address
`,
			wantErr: "unknown chain",
		},
		{
			name: "unknown chain rejected",
			doc: `version: "v1"
entries:
  - value: "x"
    chain: unknown
    kind: address
`,
			wantErr: "chain must be concrete",
		},
		{
			name: "bad kind",
			doc: `version: "v1"
entries:
  - value: "x"
    chain: evm
    kind: wallet
`,
			wantErr: "unknown input kind",
		},
		{
			name: "unknown kind rejected",
			doc: `version: "v1"
entries:
  - value: "x"
    chain: evm
    kind: unknown
`,
			wantErr: "kind must be concrete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := writeDataset(t, t.TempDir(), validDoc)

	snap, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-01", snap.Version)
	assert.Len(t, snap.Entries, 3)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read dataset file")
}

func TestProvider_LoadAndSnapshot(t *testing.T) {
	path := writeDataset(t, t.TempDir(), validDoc)

	p := NewProvider(path, time.Second, testLogger())
	require.NoError(t, p.Load())

	snap := p.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, "2026-08-01", snap.Version)
	assert.Len(t, snap.Entries, 3)
}

func TestProvider_LoadMissingFile(t *testing.T) {
	p := NewProvider(filepath.Join(t.TempDir(), "nope.yaml"), time.Second, testLogger())
	require.Error(t, p.Load())
}

func TestProvider_PollPicksUpNewVersion(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, validDoc)

	p := NewProvider(path, time.Second, testLogger())
	require.NoError(t, p.Load())

	updated := `version: "2026-08-15"
entries:
  - value: "0x7f367cc41522ce07553e823bf3be79a889debe1b"
    chain: evm
    kind: address
    label: demo-sanctions
    source: demo
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))
	// Force the mtime forward so the poll sees a change regardless of
	// filesystem timestamp granularity.
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	p.poll(context.Background())

	snap := p.Snapshot()
	assert.Equal(t, "2026-08-15", snap.Version)
	assert.Len(t, snap.Entries, 1)
}

func TestProvider_PollKeepsLastGoodOnError(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, validDoc)

	p := NewProvider(path, time.Second, testLogger())
	require.NoError(t, p.Load())

	require.NoError(t, os.WriteFile(path, []byte("{{{ not yaml"), 0o600))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	p.poll(context.Background())

	snap := p.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, "2026-08-01", snap.Version, "broken reload must keep the last good snapshot")
	assert.Len(t, snap.Entries, 3)
}

func TestProvider_PollSkipsUnchangedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, validDoc)

	p := NewProvider(path, time.Second, testLogger())
	require.NoError(t, p.Load())

	before := p.Snapshot()
	p.poll(context.Background())
	after := p.Snapshot()

	assert.Same(t, before, after, "unchanged mtime must not trigger a reload")
}

func TestProvider_WatchStopsOnContextCancel(t *testing.T) {
	path := writeDataset(t, t.TempDir(), validDoc)

	p := NewProvider(path, 10*time.Millisecond, testLogger())
	require.NoError(t, p.Load())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Watch(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after context cancellation")
	}
}
