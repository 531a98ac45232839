package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmi-lili/tx-whisperer/internal/domain/model"
)

type fakeRepo struct {
	upserts    []model.CheckRecord
	upsertErr  error
	recent     []model.CheckRecord
	recentErr  error
	recentCall int
	findErr    error
}

func (f *fakeRepo) Upsert(_ context.Context, rec model.CheckRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, rec)
	f.recent = append([]model.CheckRecord{rec}, f.recent...)
	return nil
}

func (f *fakeRepo) Recent(_ context.Context, _ int) ([]model.CheckRecord, error) {
	f.recentCall++
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	return f.recent, nil
}

func (f *fakeRepo) FindByValue(_ context.Context, value string) (*model.CheckRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for i := range f.recent {
		if f.recent[i].Value == value {
			return &f.recent[i], nil
		}
	}
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_RecordWithoutRepository(t *testing.T) {
	s := NewService(10, testLogger())

	err := s.Record(context.Background(), record("a", model.StatusClean, time.Now().UTC()))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestService_RecordMirrorsToRepository(t *testing.T) {
	repo := &fakeRepo{}
	s := NewService(10, testLogger())
	s.SetRepository(repo)

	rec := record("a", model.StatusFlagged, time.Now().UTC())
	require.NoError(t, s.Record(context.Background(), rec))

	require.Len(t, repo.upserts, 1)
	assert.Equal(t, "a", repo.upserts[0].Value)
	assert.Equal(t, model.StatusFlagged, repo.upserts[0].Status)
}

func TestService_RecordSurvivesMirrorFailure(t *testing.T) {
	repo := &fakeRepo{upsertErr: errors.New("db down"), recentErr: errors.New("db down")}
	s := NewService(10, testLogger())
	s.SetRepository(repo)

	err := s.Record(context.Background(), record("a", model.StatusClean, time.Now().UTC()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mirror check record")

	// The in-memory record is still there.
	assert.Equal(t, 1, s.Len())
	assert.Len(t, s.Recent(context.Background(), 10), 1)
}

func TestService_RecentPrefersRepository(t *testing.T) {
	now := time.Now().UTC()
	repo := &fakeRepo{recent: []model.CheckRecord{record("from-db", model.StatusClean, now)}}
	s := NewService(10, testLogger())
	s.SetRepository(repo)

	require.NoError(t, s.Record(context.Background(), record("in-memory", model.StatusClean, now)))

	got := s.Recent(context.Background(), 10)
	require.Len(t, got, 2, "one stored row plus the mirrored record")
	assert.Equal(t, "in-memory", got[0].Value)
	assert.Equal(t, "from-db", got[1].Value)
	assert.Equal(t, 1, repo.recentCall)
}

func TestService_RecentFallsBackToMemory(t *testing.T) {
	now := time.Now().UTC()
	repo := &fakeRepo{recentErr: errors.New("db down")}
	s := NewService(10, testLogger())
	s.SetRepository(repo)

	_ = s.Record(context.Background(), record("a", model.StatusClean, now))

	got := s.Recent(context.Background(), 10)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Value)
}

func TestService_FindPrefersRepository(t *testing.T) {
	now := time.Now().UTC()
	repo := &fakeRepo{recent: []model.CheckRecord{record("from-db", model.StatusFlagged, now)}}
	s := NewService(10, testLogger())
	s.SetRepository(repo)

	got := s.Find(context.Background(), "from-db")
	require.NotNil(t, got)
	assert.Equal(t, model.StatusFlagged, got.Status)

	assert.Nil(t, s.Find(context.Background(), "never-checked"))
}

func TestService_FindFallsBackToMemory(t *testing.T) {
	now := time.Now().UTC()
	repo := &fakeRepo{findErr: errors.New("db down")}
	s := NewService(10, testLogger())
	s.SetRepository(repo)

	_ = s.Record(context.Background(), record("a", model.StatusClean, now))

	got := s.Find(context.Background(), "a")
	require.NotNil(t, got)
	assert.Equal(t, "a", got.Value)
	assert.Nil(t, s.Find(context.Background(), "b"))
}

func TestService_FindWithoutRepository(t *testing.T) {
	s := NewService(10, testLogger())
	_ = s.Record(context.Background(), record("a", model.StatusClean, time.Now().UTC()))

	require.NotNil(t, s.Find(context.Background(), "a"))
	assert.Nil(t, s.Find(context.Background(), "missing"))
}
