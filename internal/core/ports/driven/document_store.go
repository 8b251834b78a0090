package driven

import (
	"context"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// DocumentStore keeps ingestion bookkeeping: which documents were indexed,
// when, and into how many chunks. The vector index holds the chunk content;
// this store only records provenance.
type DocumentStore interface {
	// Save creates or updates a document record
	Save(ctx context.Context, doc *domain.Document) error

	// SaveBatch saves multiple documents in one transaction
	SaveBatch(ctx context.Context, docs []*domain.Document) error

	// Get retrieves a document record by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns document records ordered by ingestion time, newest first
	List(ctx context.Context, limit, offset int) ([]*domain.Document, error)

	// Count returns the total number of document records
	Count(ctx context.Context) (int, error)

	// Delete removes a document record
	Delete(ctx context.Context, id string) error
}
