package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/intellidocs/intellidocs/internal/store"
)

// fakeEmbedder maps each input text through embedFn, or fails with err.
type fakeEmbedder struct {
	embedFn func(text string) []float32
	err     error
	calls   int
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = f.embedFn(text)
	}
	return vectors, nil
}

// fakeCompleter replies with a fixed string and records every call.
type fakeCompleter struct {
	reply  string
	err    error
	calls  int
	seen   [][]store.Message
	onCall func()
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []store.Message) (string, error) {
	f.calls++
	f.seen = append(f.seen, messages)
	if f.onCall != nil {
		f.onCall()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeCompleter) lastMessages() []store.Message {
	if len(f.seen) == 0 {
		return nil
	}
	return f.seen[len(f.seen)-1]
}

// fakeConversationStore keeps histories in memory, keyed by document ID.
type fakeConversationStore struct {
	mu       sync.Mutex
	messages map[int64][]store.Message
	appends  []string // "role:content" in arrival order, across documents
	err      error
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{messages: make(map[int64][]store.Message)}
}

func (f *fakeConversationStore) AppendMessage(documentID int64, role store.Role, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages[documentID] = append(f.messages[documentID], store.Message{
		DocumentID: documentID, Role: role, Content: content,
	})
	f.appends = append(f.appends, fmt.Sprintf("%s:%s", role, content))
	return nil
}

func (f *fakeConversationStore) History(documentID int64) ([]store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]store.Message{}, f.messages[documentID]...), nil
}

// fakeStatusStore records every transition per document.
type fakeStatusStore struct {
	mu          sync.Mutex
	statuses    map[int64]store.DocumentStatus
	transitions map[int64][]store.DocumentStatus
}

func newFakeStatusStore() *fakeStatusStore {
	return &fakeStatusStore{
		statuses:    make(map[int64]store.DocumentStatus),
		transitions: make(map[int64][]store.DocumentStatus),
	}
}

func (f *fakeStatusStore) UpdateStatus(documentID int64, status store.DocumentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[documentID] = status
	f.transitions[documentID] = append(f.transitions[documentID], status)
	return nil
}

func (f *fakeStatusStore) status(documentID int64) store.DocumentStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[documentID]
}
