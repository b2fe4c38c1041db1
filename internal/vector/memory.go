package vector

import (
	"context"
	"sort"
	"sync"

	"github.com/intellidocs/intellidocs/internal/utils"
)

type chunkKey struct {
	documentID int64
	seq        int
}

// MemoryIndex is an in-memory Index using brute-force cosine similarity.
// Suitable for tests and small corpora.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[chunkKey]Entry
}

var _ Index = (*MemoryIndex)(nil)

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[chunkKey]Entry)}
}

// Upsert adds or replaces entries keyed by (DocumentID, Seq). The whole
// batch is applied under one lock, so readers see all of it or none of it.
func (m *MemoryIndex) Upsert(ctx context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		vec := make([]float32, len(e.Embedding))
		copy(vec, e.Embedding)
		e.Embedding = vec
		m.entries[chunkKey{e.DocumentID, e.Seq}] = e
	}
	return nil
}

// Query scores only the given document's entries and returns the topK chunk
// texts by descending similarity.
func (m *MemoryIndex) Query(ctx context.Context, documentID int64, query []float32, topK int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		entry Entry
		score float32
	}
	var candidates []scored
	for key, e := range m.entries {
		if key.documentID != documentID {
			continue
		}
		score, err := utils.CosineSimilarity(query, e.Embedding)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, scored{entry: e, score: score})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if topK > len(candidates) {
		topK = len(candidates)
	}
	results := make([]string, 0, topK)
	for i := 0; i < topK; i++ {
		results = append(results, candidates[i].entry.Content)
	}
	return results, nil
}

// DeleteByDocument removes every entry for the document.
func (m *MemoryIndex) DeleteByDocument(ctx context.Context, documentID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if key.documentID == documentID {
			delete(m.entries, key)
		}
	}
	return nil
}

// Size returns the number of indexed entries across all documents.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
