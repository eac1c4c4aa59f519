package memory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docparse/internal/domain"
	"docparse/internal/repository/memory"
)

func record(t *testing.T, name string) *domain.ParseRecord {
	t.Helper()
	return &domain.ParseRecord{ID: uuid.New(), OriginalName: name + ".pdf", BaseName: name, Status: domain.ParseStatusSucceeded}
}

func TestJournal_RecordAndGet(t *testing.T) {
	ctx := context.Background()
	j := memory.NewJournal(10)

	rec := record(t, "a")
	require.NoError(t, j.Record(ctx, rec))

	got, err := j.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, *rec, *got)

	_, err = j.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, j.Ping(ctx))
}

func TestJournal_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	j := memory.NewJournal(10)

	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, j.Record(ctx, record(t, name)))
	}

	recs, total, err := j.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, recs, 2)
	assert.Equal(t, "d", recs[0].BaseName)
	assert.Equal(t, "c", recs[1].BaseName)

	recs, _, err = j.List(ctx, 3, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].BaseName)

	recs, _, err = j.List(ctx, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestJournal_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	j := memory.NewJournal(2)

	first := record(t, "a")
	require.NoError(t, j.Record(ctx, first))
	require.NoError(t, j.Record(ctx, record(t, "b")))
	last := record(t, "c")
	require.NoError(t, j.Record(ctx, last))

	_, err := j.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := j.GetByID(ctx, last.ID)
	require.NoError(t, err)
	assert.Equal(t, "c", got.BaseName)

	_, total, err := j.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
