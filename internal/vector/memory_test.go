package vector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndex_QueryRanksBySimilarity(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	err := idx.Upsert(ctx, []Entry{
		{DocumentID: 1, Seq: 0, Content: "A B C", Embedding: []float32{1, 0, 0}},
		{DocumentID: 1, Seq: 1, Content: "C D E", Embedding: []float32{0, 1, 0}},
		{DocumentID: 1, Seq: 2, Content: "E F", Embedding: []float32{0, 0, 1}},
	})
	require.NoError(t, err)

	results, err := idx.Query(ctx, 1, []float32{0.1, 0.9, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "C D E", results[0])
}

func TestMemoryIndex_DocumentIsolation(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	// Document 2's chunk is the exact nearest neighbor of the query, but a
	// query scoped to document 1 must never see it.
	err := idx.Upsert(ctx, []Entry{
		{DocumentID: 1, Seq: 0, Content: "doc one chunk", Embedding: []float32{0, 1, 0}},
		{DocumentID: 2, Seq: 0, Content: "doc two chunk", Embedding: []float32{1, 0, 0}},
	})
	require.NoError(t, err)

	results, err := idx.Query(ctx, 1, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc one chunk", results[0])
}

func TestMemoryIndex_QueryUnknownDocument(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []Entry{
		{DocumentID: 1, Seq: 0, Content: "x", Embedding: []float32{1, 0}},
	}))

	results, err := idx.Query(ctx, 99, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryIndex_FewerChunksThanTopK(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []Entry{
		{DocumentID: 1, Seq: 0, Content: "only one", Embedding: []float32{1, 0}},
	}))

	results, err := idx.Query(ctx, 1, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"only one"}, results)
}

func TestMemoryIndex_UpsertOverwritesByChunkID(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []Entry{
		{DocumentID: 1, Seq: 0, Content: "old text", Embedding: []float32{1, 0}},
	}))
	require.NoError(t, idx.Upsert(ctx, []Entry{
		{DocumentID: 1, Seq: 0, Content: "new text", Embedding: []float32{1, 0}},
	}))

	assert.Equal(t, 1, idx.Size())
	results, err := idx.Query(ctx, 1, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"new text"}, results)
}

func TestMemoryIndex_DeleteByDocument(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []Entry{
		{DocumentID: 1, Seq: 0, Content: "a", Embedding: []float32{1, 0}},
		{DocumentID: 1, Seq: 1, Content: "b", Embedding: []float32{0, 1}},
		{DocumentID: 2, Seq: 0, Content: "c", Embedding: []float32{1, 0}},
	}))

	require.NoError(t, idx.DeleteByDocument(ctx, 1))
	assert.Equal(t, 1, idx.Size())

	results, err := idx.Query(ctx, 1, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = idx.Query(ctx, 2, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, results)
}
