package driving

import (
	"context"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// AnswerService runs the full query path: tenant resolution, retrieval,
// fallback decision, optional generation, analytics.
type AnswerService interface {
	// Answer handles one inbound question. It returns an error only for
	// invalid input or a cancelled context; retrieval failures degrade to
	// the tenant's fallback answer instead.
	Answer(ctx context.Context, req domain.AnswerRequest) (*domain.AnswerResult, error)
}
