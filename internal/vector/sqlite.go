package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"

	"github.com/intellidocs/intellidocs/internal/utils"
)

// SQLiteIndex is a persistent Index. Embeddings are stored as JSON arrays
// next to their chunk text; queries load a single document's rows and rank
// them by cosine similarity in process.
type SQLiteIndex struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ Index = (*SQLiteIndex)(nil)

func NewSQLiteIndex(dataSourceName string, logger *zap.Logger) (*SQLiteIndex, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping index database: %w", err)
	}

	idx := &SQLiteIndex{db: db, logger: logger}
	if err = idx.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize index schema: %w", err)
	}
	return idx, nil
}

func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

func (s *SQLiteIndex) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS chunks (
        document_id INTEGER NOT NULL,
        seq INTEGER NOT NULL,
        content TEXT NOT NULL,
        embedding_json TEXT NOT NULL, -- JSON array of float32
        PRIMARY KEY (document_id, seq)
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// Upsert writes the batch in one transaction: either every chunk becomes
// queryable or none does. Repeated (document_id, seq) pairs overwrite.
func (s *SQLiteIndex) Upsert(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin index transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR REPLACE INTO chunks (document_id, seq, content, embedding_json) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		embeddingBytes, err := json.Marshal(e.Embedding)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding for chunk (%d,%d): %w", e.DocumentID, e.Seq, err)
		}
		if _, err = stmt.ExecContext(ctx, e.DocumentID, e.Seq, e.Content, string(embeddingBytes)); err != nil {
			return fmt.Errorf("failed to insert chunk (%d,%d): %w", e.DocumentID, e.Seq, err)
		}
	}
	return tx.Commit()
}

// Query loads the document's chunks and ranks them by cosine similarity.
// The WHERE clause is the isolation boundary: chunks of other documents are
// never scored, let alone returned.
func (s *SQLiteIndex) Query(ctx context.Context, documentID int64, query []float32, topK int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT seq, content, embedding_json FROM chunks WHERE document_id = ?", documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks for document %d: %w", documentID, err)
	}
	defer rows.Close()

	type scored struct {
		content string
		score   float32
	}
	var candidates []scored
	for rows.Next() {
		var (
			seq           int
			content       string
			embeddingJSON string
		)
		if err := rows.Scan(&seq, &content, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		var embedding []float32
		if err := json.Unmarshal([]byte(embeddingJSON), &embedding); err != nil {
			s.logger.Warn("skipping chunk with unreadable embedding",
				zap.Int64("document_id", documentID), zap.Int("seq", seq), zap.Error(err))
			continue
		}
		score, err := utils.CosineSimilarity(query, embedding)
		if err != nil {
			s.logger.Warn("skipping chunk with incompatible embedding",
				zap.Int64("document_id", documentID), zap.Int("seq", seq), zap.Error(err))
			continue
		}
		candidates = append(candidates, scored{content: content, score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunk rows: %w", err)
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if topK > len(candidates) {
		topK = len(candidates)
	}
	results := make([]string, 0, topK)
	for i := 0; i < topK; i++ {
		results = append(results, candidates[i].content)
	}
	return results, nil
}

// DeleteByDocument removes all of the document's chunks.
func (s *SQLiteIndex) DeleteByDocument(ctx context.Context, documentID int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("failed to delete chunks for document %d: %w", documentID, err)
	}
	return nil
}
