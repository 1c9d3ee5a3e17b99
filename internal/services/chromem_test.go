package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestChromemStore(t *testing.T) VectorStore {
	t.Helper()
	store := NewChromemStore("test_profiles", zap.NewNop())
	require.NoError(t, store.Init(context.Background()))
	return store
}

func TestChromemStore_SearchOrdersBySimilarity(t *testing.T) {
	ctx := context.Background()
	store := newTestChromemStore(t)

	a, b, c := uuid.NewString(), uuid.NewString(), uuid.NewString()
	require.NoError(t, store.Upsert(ctx, a, KindCandidate, []float32{1, 0}, map[string]string{"name": "A"}))
	require.NoError(t, store.Upsert(ctx, b, KindCandidate, []float32{0, 1}, map[string]string{"name": "B"}))
	require.NoError(t, store.Upsert(ctx, c, KindCandidate, []float32{0.5, 0.5}, map[string]string{"name": "C"}))

	results, err := store.Search(ctx, []float32{1, 0}, KindCandidate, 3)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, a, results[0].ID)
	assert.Equal(t, c, results[1].ID)
	assert.Equal(t, b, results[2].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)
	assert.Equal(t, "A", results[0].Payload["name"])
	assert.Equal(t, KindCandidate, results[0].Kind)
}

func TestChromemStore_FiltersByKindAndCapsLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestChromemStore(t)

	cand, job := uuid.NewString(), uuid.NewString()
	require.NoError(t, store.Upsert(ctx, cand, KindCandidate, []float32{1, 0}, nil))
	require.NoError(t, store.Upsert(ctx, job, KindJob, []float32{1, 0}, nil))

	results, err := store.Search(ctx, []float32{1, 0}, KindJob, 50)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, job, results[0].ID)
}

func TestChromemStore_EmptyCollection(t *testing.T) {
	store := newTestChromemStore(t)

	results, err := store.Search(context.Background(), []float32{1, 0}, KindCandidate, 5)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChromemStore_UpsertReplacesAndDeleteRemoves(t *testing.T) {
	ctx := context.Background()
	store := newTestChromemStore(t)

	id := uuid.NewString()
	other := uuid.NewString()
	require.NoError(t, store.Upsert(ctx, id, KindCandidate, []float32{0, 1}, nil))
	require.NoError(t, store.Upsert(ctx, other, KindCandidate, []float32{0.6, 0.8}, nil))
	require.NoError(t, store.Upsert(ctx, id, KindCandidate, []float32{1, 0}, nil))

	results, err := store.Search(ctx, []float32{1, 0}, KindCandidate, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, id, results[0].ID)

	require.NoError(t, store.Delete(ctx, id))

	results, err = store.Search(ctx, []float32{1, 0}, KindCandidate, 2)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, other, results[0].ID)
}

func TestNewVectorStore_UnknownDriver(t *testing.T) {
	_, err := NewVectorStore(VectorStoreConfig{Driver: "faiss"}, zap.NewNop())
	assert.Error(t, err)
}
