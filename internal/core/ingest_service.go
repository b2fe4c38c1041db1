package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/intellidocs/intellidocs/internal/chunker"
	"github.com/intellidocs/intellidocs/internal/store"
	"github.com/intellidocs/intellidocs/internal/vector"
)

// IngestService turns a document's extracted text into queryable chunk
// embeddings. One run per uploaded document:
// PROCESSING -> chunk -> embed (one batch) -> index (one atomic upsert) ->
// COMPLETED, with any failure marking the document FAILED. Nothing is ever
// partially indexed, and no retries happen here; FAILED is terminal until
// the upload layer triggers a fresh ingestion.
type IngestService struct {
	embedder  Embedder
	index     vector.Index
	statuses  StatusStore
	logger    *zap.Logger
	chunkSize int
	overlap   int
}

func NewIngestService(embedder Embedder, index vector.Index, statuses StatusStore, chunkSize, overlap int, logger *zap.Logger) (*IngestService, error) {
	// Surface bad chunking parameters at startup, not per document.
	if _, err := chunker.Chunk("probe", chunkSize, overlap); err != nil {
		return nil, err
	}
	return &IngestService{
		embedder:  embedder,
		index:     index,
		statuses:  statuses,
		logger:    logger,
		chunkSize: chunkSize,
		overlap:   overlap,
	}, nil
}

// Ingest processes one document. Concurrent ingestion of different
// documents does not contend: state is keyed by document ID throughout.
func (s *IngestService) Ingest(ctx context.Context, documentID int64, rawText string) error {
	log := s.logger.With(zap.Int64("document_id", documentID))
	log.Info("starting document ingestion")

	if err := s.statuses.UpdateStatus(documentID, store.StatusProcessing); err != nil {
		return fmt.Errorf("failed to mark document %d as processing: %w", documentID, err)
	}

	chunks, err := chunker.Chunk(rawText, s.chunkSize, s.overlap)
	if err != nil {
		// Configuration errors are programmer errors; they do not consume
		// the document's one processing attempt.
		return err
	}
	if len(chunks) == 0 {
		s.markFailed(documentID)
		return fmt.Errorf("document %d: %w", documentID, ErrEmptyDocument)
	}
	log.Info("chunked document text", zap.Int("chunks", len(chunks)))

	// All chunks go through a single batch call so a failure indexes
	// nothing rather than part of the document.
	vectors, err := s.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		s.markFailed(documentID)
		return fmt.Errorf("document %d: %w", documentID, err)
	}
	if len(vectors) != len(chunks) {
		s.markFailed(documentID)
		return fmt.Errorf("document %d: %w: got %d vectors for %d chunks",
			documentID, ErrEmbeddingUnavailable, len(vectors), len(chunks))
	}

	entries := make([]vector.Entry, len(chunks))
	for i, text := range chunks {
		entries[i] = vector.Entry{
			DocumentID: documentID,
			Seq:        i,
			Content:    text,
			Embedding:  vectors[i],
		}
	}
	if err := s.index.Upsert(ctx, entries); err != nil {
		s.markFailed(documentID)
		return fmt.Errorf("document %d: failed to index chunks: %w", documentID, err)
	}

	if err := s.statuses.UpdateStatus(documentID, store.StatusCompleted); err != nil {
		// The index is queryable but the status is stuck in PROCESSING.
		// Accepted cross-store limitation; see DESIGN.md.
		return fmt.Errorf("failed to mark document %d as completed: %w", documentID, err)
	}
	log.Info("finished document ingestion", zap.Int("chunks", len(chunks)))
	return nil
}

func (s *IngestService) markFailed(documentID int64) {
	if err := s.statuses.UpdateStatus(documentID, store.StatusFailed); err != nil {
		s.logger.Error("failed to mark document as failed",
			zap.Int64("document_id", documentID), zap.Error(err))
	}
}
