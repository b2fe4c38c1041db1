package core

import (
	"context"

	"github.com/intellidocs/intellidocs/internal/store"
)

// Embedder turns texts into fixed-length vectors, one per input, in input
// order. Implementations batch the whole slice into a single model call.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer produces a reply for an assembled message sequence.
type Completer interface {
	Complete(ctx context.Context, messages []store.Message) (string, error)
}

// ConversationStore is the append-only per-document message history.
type ConversationStore interface {
	AppendMessage(documentID int64, role store.Role, content string) error
	History(documentID int64) ([]store.Message, error)
}

// StatusStore surfaces ingestion state transitions to the relational layer
// owned by the upstream document manager.
type StatusStore interface {
	UpdateStatus(documentID int64, status store.DocumentStatus) error
}
