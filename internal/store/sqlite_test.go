package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_HistoryEmptyWithoutError(t *testing.T) {
	s := newTestStore(t)

	messages, err := s.History(123)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestSQLiteStore_AppendPreservesOrder(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AppendMessage(1, RoleUser, "first question"))
	require.NoError(t, s.AppendMessage(1, RoleAssistant, "first answer"))
	require.NoError(t, s.AppendMessage(1, RoleUser, "second question"))

	messages, err := s.History(1)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first question", messages[0].Content)
	assert.Equal(t, RoleUser, messages[0].Role)
	assert.Equal(t, "first answer", messages[1].Content)
	assert.Equal(t, RoleAssistant, messages[1].Role)
	assert.Equal(t, "second question", messages[2].Content)
}

func TestSQLiteStore_ConversationsAreKeyedByDocument(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AppendMessage(1, RoleUser, "about doc one"))
	require.NoError(t, s.AppendMessage(2, RoleUser, "about doc two"))

	messages, err := s.History(1)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "about doc one", messages[0].Content)
}

func TestSQLiteStore_AppendRejectsUnknownRole(t *testing.T) {
	s := newTestStore(t)
	err := s.AppendMessage(1, Role("moderator"), "nope")
	require.Error(t, err)
}

func TestSQLiteStore_DeleteConversation(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AppendMessage(1, RoleUser, "hello"))
	require.NoError(t, s.AppendMessage(2, RoleUser, "other"))
	require.NoError(t, s.DeleteConversation(1))

	messages, err := s.History(1)
	require.NoError(t, err)
	assert.Empty(t, messages)

	messages, err = s.History(2)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestSQLiteStore_StatusLifecycle(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.EnsureDocument(10))
	doc, err := s.GetDocument(10)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, StatusPending, doc.Status)

	for _, status := range []DocumentStatus{StatusProcessing, StatusCompleted} {
		require.NoError(t, s.UpdateStatus(10, status))
		doc, err = s.GetDocument(10)
		require.NoError(t, err)
		assert.Equal(t, status, doc.Status)
	}
}

func TestSQLiteStore_EnsureDocumentIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.EnsureDocument(10))
	require.NoError(t, s.UpdateStatus(10, StatusCompleted))
	require.NoError(t, s.EnsureDocument(10))

	doc, err := s.GetDocument(10)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, doc.Status)
}

func TestSQLiteStore_UpdateStatusRejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.EnsureDocument(10))
	require.Error(t, s.UpdateStatus(10, DocumentStatus("SHRUGGING")))
}

func TestSQLiteStore_UpdateStatusUnknownDocument(t *testing.T) {
	s := newTestStore(t)
	require.Error(t, s.UpdateStatus(404, StatusProcessing))
}

func TestSQLiteStore_GetDocumentMissing(t *testing.T) {
	s := newTestStore(t)
	doc, err := s.GetDocument(404)
	require.NoError(t, err)
	assert.Nil(t, doc)
}
