package core

import "errors"

// Error kinds of the retrieval pipeline. Callers match with errors.Is; the
// API boundary maps them to fixed user-facing messages, so internal detail
// never reaches a reply.
var (
	// ErrEmptyDocument means ingestion found no extractable text to chunk.
	// The document is marked FAILED.
	ErrEmptyDocument = errors.New("document has no extractable text")

	// ErrEmbeddingUnavailable means the embedding capability failed. The
	// document is marked FAILED and nothing is indexed; no retries happen
	// inside the pipeline.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable means the generative capability failed. Chat
	// turns answer with a fixed fallback instead of propagating this.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrIndexQuery means a similarity query failed. Search treats it as
	// zero results and the chat turn continues.
	ErrIndexQuery = errors.New("vector index query failed")
)
