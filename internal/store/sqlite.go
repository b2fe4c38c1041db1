package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore persists per-document conversation histories and document
// processing statuses. It is shared across all documents; isolation is by
// document ID, there is no global locking.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS documents (
        id INTEGER PRIMARY KEY,
        processing_status TEXT NOT NULL DEFAULT 'PENDING'
            CHECK (processing_status IN ('PENDING', 'PROCESSING', 'COMPLETED', 'FAILED')),
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS messages (
        id TEXT PRIMARY KEY, -- UUID
        document_id INTEGER NOT NULL,
        role TEXT NOT NULL CHECK (role IN ('user', 'assistant', 'system')),
        content TEXT NOT NULL,
        timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE INDEX IF NOT EXISTS idx_messages_document ON messages (document_id);
    `
	_, err := s.db.Exec(schema)
	return err
}

// Document status methods

// EnsureDocument creates the document row if it does not exist yet. Newly
// created rows start in PENDING.
func (s *SQLiteStore) EnsureDocument(documentID int64) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO documents (id, processing_status) VALUES (?, ?)", documentID, StatusPending)
	if err != nil {
		return fmt.Errorf("failed to ensure document %d: %w", documentID, err)
	}
	return nil
}

// UpdateStatus sets the processing status for a document. Unknown statuses
// are rejected before touching the database.
func (s *SQLiteStore) UpdateStatus(documentID int64, status DocumentStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid document status %q", status)
	}
	res, err := s.db.Exec("UPDATE documents SET processing_status = ? WHERE id = ?", status, documentID)
	if err != nil {
		return fmt.Errorf("failed to update status for document %d: %w", documentID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("document %d not found, status not updated", documentID)
	}
	return nil
}

// GetDocument returns the document row, or nil if it does not exist.
func (s *SQLiteStore) GetDocument(documentID int64) (*Document, error) {
	var doc Document
	err := s.db.QueryRow("SELECT id, processing_status, created_at FROM documents WHERE id = ?", documentID).
		Scan(&doc.ID, &doc.Status, &doc.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document %d: %w", documentID, err)
	}
	return &doc, nil
}

// DeleteDocument removes the document row. Chunk entries live in the vector
// index and are removed separately.
func (s *SQLiteStore) DeleteDocument(documentID int64) error {
	if _, err := s.db.Exec("DELETE FROM documents WHERE id = ?", documentID); err != nil {
		return fmt.Errorf("failed to delete document %d: %w", documentID, err)
	}
	return nil
}

// Conversation methods

// AppendMessage appends one message to a document's history. The history is
// created implicitly on first append. Messages arrive in call order; nothing
// is reordered or dropped.
func (s *SQLiteStore) AppendMessage(documentID int64, role Role, content string) error {
	if !role.Valid() {
		return fmt.Errorf("invalid message role %q", role)
	}

	stmt, err := s.db.Prepare("INSERT INTO messages (id, document_id, role, content, timestamp) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(uuid.NewString(), documentID, role, content, time.Now()); err != nil {
		return fmt.Errorf("failed to execute message insert: %w", err)
	}
	return nil
}

// History returns a document's messages in append order. A document with no
// history yields an empty slice, never an error.
func (s *SQLiteStore) History(documentID int64) ([]Message, error) {
	rows, err := s.db.Query(
		"SELECT id, document_id, role, content, timestamp FROM messages WHERE document_id = ? ORDER BY rowid ASC",
		documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.DocumentID, &msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}
	return messages, nil
}

// DeleteConversation removes all messages for a document. Used on the
// document delete path alongside the vector index cleanup.
func (s *SQLiteStore) DeleteConversation(documentID int64) error {
	if _, err := s.db.Exec("DELETE FROM messages WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("failed to delete conversation for document %d: %w", documentID, err)
	}
	return nil
}
