package driving

import (
	"context"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// IngestService handles the ingestion path: chunk, embed, index.
type IngestService interface {
	// IngestDocument chunks, embeds and indexes a single document into
	// the given collection
	IngestDocument(ctx context.Context, collection string, doc *domain.Document) (*domain.IngestStats, error)

	// IngestDirectory ingests every supported file under dir
	// (.txt, .md, .markdown; empty files are skipped)
	IngestDirectory(ctx context.Context, collection, dir string) (*domain.IngestStats, error)

	// ResetCollection deletes and recreates a collection
	ResetCollection(ctx context.Context, collection string) error

	// CollectionStats reports the chunk count of a collection
	CollectionStats(ctx context.Context, collection string) (*domain.CollectionStats, error)
}
