package services

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/supportbot-core/internal/chunker"
	"github.com/custodia-labs/supportbot-core/internal/core/domain"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driven"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driving"
	"github.com/custodia-labs/supportbot-core/internal/runtime"
)

// Ensure ingestService implements IngestService
var _ driving.IngestService = (*ingestService)(nil)

// upsertBatchSize bounds one vector index write.
const upsertBatchSize = 100

// supportedExtensions are the file types the directory loader accepts.
var supportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// ingestService chunks, embeds and indexes documents.
type ingestService struct {
	index    driven.VectorIndex
	docs     driven.DocumentStore
	services *runtime.Services
	params   domain.ChunkParams
	logger   *slog.Logger
}

// NewIngestService creates an IngestService. params is validated on every
// ingestion call so a bad configuration fails before any chunk is written.
func NewIngestService(
	index driven.VectorIndex,
	docs driven.DocumentStore,
	services *runtime.Services,
	params domain.ChunkParams,
	logger *slog.Logger,
) driving.IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	if params.MaxSize == 0 && params.Overlap == 0 {
		params = domain.DefaultChunkParams()
	}
	return &ingestService{
		index:    index,
		docs:     docs,
		services: services,
		params:   params,
		logger:   logger,
	}
}

// IngestDocument chunks, embeds and indexes one document.
func (s *ingestService) IngestDocument(ctx context.Context, collection string, doc *domain.Document) (*domain.IngestStats, error) {
	if err := s.params.Validate(); err != nil {
		return nil, err
	}
	if collection == "" {
		return nil, fmt.Errorf("%w: collection must not be empty", domain.ErrInvalidInput)
	}
	if doc == nil || strings.TrimSpace(doc.Content) == "" {
		return &domain.IngestStats{}, nil
	}

	embedder := s.services.EmbeddingService()
	if embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrServiceUnavailable)
	}

	segments, err := chunker.Split(doc.Content, s.params.MaxSize, s.params.Overlap)
	if err != nil {
		return nil, fmt.Errorf("chunk document %s: %w", doc.ID, err)
	}

	chunks := domain.BuildChunks(doc, segments)
	s.logger.Info("ingesting document",
		"document_id", doc.ID, "collection", collection, "chunks", len(chunks))

	for start := 0; start < len(chunks); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		embeddings, err := embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed batch for %s: %w", doc.ID, err)
		}

		if err := s.index.Upsert(ctx, collection, batch, embeddings); err != nil {
			return nil, fmt.Errorf("index batch for %s: %w", doc.ID, err)
		}
	}

	if s.docs != nil {
		record := *doc
		record.ChunkCount = len(chunks)
		record.IngestedAt = time.Now().UTC()
		if err := s.docs.Save(ctx, &record); err != nil {
			// Bookkeeping only; the chunks are already indexed.
			s.logger.Warn("document bookkeeping failed",
				"document_id", doc.ID, "error", err)
		}
	}

	return &domain.IngestStats{Documents: 1, Chunks: len(chunks)}, nil
}

// IngestDirectory loads every supported file under dir and ingests each.
// Empty files are skipped; unreadable files fail the run.
func (s *ingestService) IngestDirectory(ctx context.Context, collection, dir string) (*domain.IngestStats, error) {
	docs, err := LoadDocumentsFromDirectory(dir)
	if err != nil {
		return nil, err
	}

	total := &domain.IngestStats{}
	for _, doc := range docs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		stats, err := s.IngestDocument(ctx, collection, doc)
		if err != nil {
			return nil, err
		}
		total.Documents += stats.Documents
		total.Chunks += stats.Chunks
	}

	s.logger.Info("directory ingested",
		"dir", dir, "collection", collection,
		"documents", total.Documents, "chunks", total.Chunks)
	return total, nil
}

// ResetCollection deletes and recreates a collection.
func (s *ingestService) ResetCollection(ctx context.Context, collection string) error {
	if collection == "" {
		return fmt.Errorf("%w: collection must not be empty", domain.ErrInvalidInput)
	}
	return s.index.Reset(ctx, collection)
}

// CollectionStats reports the chunk count of a collection.
func (s *ingestService) CollectionStats(ctx context.Context, collection string) (*domain.CollectionStats, error) {
	count, err := s.index.Count(ctx, collection)
	if err != nil {
		return nil, err
	}
	return &domain.CollectionStats{Collection: collection, Chunks: count}, nil
}

// LoadDocumentsFromDirectory walks dir and loads every .txt, .md and
// .markdown file as a Document. Files that are empty after trimming are
// skipped.
func LoadDocumentsFromDirectory(dir string) ([]*domain.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: directory %s", domain.ErrNotFound, dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	var docs []*domain.Document
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			return nil
		}

		docs = append(docs, &domain.Document{
			ID:      path,
			Path:    path,
			Content: string(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}
