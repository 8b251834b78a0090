package driven

import (
	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// AIServiceFactory creates AI collaborators from validated settings.
// Returning (nil, nil) means the settings are absent and the capability is
// simply unavailable.
type AIServiceFactory interface {
	CreateEmbeddingService(settings *domain.EmbeddingSettings) (EmbeddingService, error)
	CreateLLMService(settings *domain.LLMSettings) (LLMService, error)
}
