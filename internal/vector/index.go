// Package vector provides a per-document-filtered nearest-neighbor store of
// chunk embeddings.
package vector

import "context"

// Entry is one indexed chunk. A chunk is identified by (DocumentID, Seq);
// entries are immutable after creation and only removed as a whole
// document's set.
type Entry struct {
	DocumentID int64
	Seq        int
	Content    string
	Embedding  []float32
}

// Index stores chunk embeddings and answers similarity queries scoped to a
// single document. A query for document X must never return a chunk indexed
// under a different document; documents belong to different users and the
// filter is the isolation boundary.
type Index interface {
	// Upsert adds entries, overwriting on a repeated (DocumentID, Seq).
	// The batch is atomic from the caller's perspective.
	Upsert(ctx context.Context, entries []Entry) error

	// Query returns up to topK chunk texts for the document, ranked by
	// cosine similarity, highest first. A document with fewer chunks
	// returns fewer; a document with none returns an empty slice, not an
	// error.
	Query(ctx context.Context, documentID int64, query []float32, topK int) ([]string, error)

	// DeleteByDocument removes every entry belonging to the document.
	DeleteByDocument(ctx context.Context, documentID int64) error
}
