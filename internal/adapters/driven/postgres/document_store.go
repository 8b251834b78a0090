package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements driven.DocumentStore using PostgreSQL.
// Document content is not stored here; the row is ingestion bookkeeping.
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

const saveDocumentQuery = `
	INSERT INTO documents (id, path, metadata, chunk_count, ingested_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET
		path = EXCLUDED.path,
		metadata = EXCLUDED.metadata,
		chunk_count = EXCLUDED.chunk_count,
		ingested_at = EXCLUDED.ingested_at
`

// Save creates or updates a document record
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, saveDocumentQuery,
		doc.ID,
		doc.Path,
		metadataJSON,
		doc.ChunkCount,
		doc.IngestedAt,
	)
	return err
}

// SaveBatch saves multiple documents in one transaction
func (s *DocumentStore) SaveBatch(ctx context.Context, docs []*domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, saveDocumentQuery)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, doc := range docs {
			metadataJSON, err := json.Marshal(doc.Metadata)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, doc.ID, doc.Path, metadataJSON, doc.ChunkCount, doc.IngestedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get retrieves a document record by ID
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	query := `
		SELECT id, path, metadata, chunk_count, ingested_at
		FROM documents
		WHERE id = $1
	`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// List returns document records ordered by ingestion time, newest first
func (s *DocumentStore) List(ctx context.Context, limit, offset int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, path, metadata, chunk_count, ingested_at
		FROM documents
		ORDER BY ingested_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Count returns the total number of document records
func (s *DocumentStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// Delete removes a document record
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var metadataJSON []byte

	if err := row.Scan(&doc.ID, &doc.Path, &metadataJSON, &doc.ChunkCount, &doc.IngestedAt); err != nil {
		return nil, err
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document metadata: %w", err)
		}
	}
	return &doc, nil
}
