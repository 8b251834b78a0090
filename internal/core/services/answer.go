package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driving"
	"github.com/custodia-labs/supportbot-core/internal/runtime"
)

// Ensure answerService implements AnswerService
var _ driving.AnswerService = (*answerService)(nil)

// answerService runs the query path: resolve tenant, retrieve, decide,
// generate when context survived, record analytics.
type answerService struct {
	tenants   driving.TenantService
	engine    *RetrievalEngine
	analytics *Aggregator
	services  *runtime.Services
	logger    *slog.Logger
}

// NewAnswerService creates an AnswerService. The LLM is read dynamically
// via runtime.Services; when absent, context answers are returned
// ungenerated for the caller to complete.
func NewAnswerService(
	tenants driving.TenantService,
	engine *RetrievalEngine,
	analytics *Aggregator,
	services *runtime.Services,
	logger *slog.Logger,
) driving.AnswerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &answerService{
		tenants:   tenants,
		engine:    engine,
		analytics: analytics,
		services:  services,
		logger:    logger,
	}
}

// Answer handles one inbound question.
func (s *answerService) Answer(ctx context.Context, req domain.AnswerRequest) (*domain.AnswerResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message must not be empty", domain.ErrInvalidInput)
	}

	cfg := s.tenants.Resolve(req.TenantID)

	retrieval, err := s.engine.Retrieve(ctx, cfg, req.Message)
	if err != nil {
		// Abandoned request: nothing is recorded for incomplete queries.
		return nil, err
	}

	decision := DecideFallback(retrieval, cfg)

	result := &domain.AnswerResult{
		TenantID:     cfg.TenantID,
		UserID:       req.UserID,
		Answer:       decision.Answer,
		Sources:      decision.Sources,
		FallbackUsed: decision.UsedFallback,
		LatencyMS:    float64(retrieval.Took.Microseconds()) / 1000.0,
		Degraded:     retrieval.Status == domain.RetrievalDegraded,
	}
	if decision.UsedFallback {
		result.AnswerSource = domain.AnswerSourceFallback
	} else {
		result.AnswerSource = domain.AnswerSourceContext
		s.generate(ctx, cfg, req, retrieval, result)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	s.analytics.Record(cfg.TenantID, result.FallbackUsed, result.LatencyMS, domain.CategorizeIntent(req.Message))

	return result, nil
}

// generate fills in the answer text from the LLM when one is configured.
// A generation failure degrades to the tenant's fallback text instead of
// surfacing an error to the end user.
func (s *answerService) generate(ctx context.Context, cfg domain.TenantConfig, req domain.AnswerRequest, retrieval *domain.RetrievalResult, result *domain.AnswerResult) {
	llm := s.services.LLMService()
	if llm == nil {
		// No generator configured; the request layer completes the answer
		// from the retained context.
		return
	}

	userMessage := fmt.Sprintf(
		"User ID: %s\nTenant: %s\nQuestion: %s\nProvide a concise, friendly support response.",
		req.UserID, cfg.TenantID, req.Message)

	answer, err := llm.Generate(ctx, cfg.SystemPrompt, userMessage, FormatContext(retrieval.Matches))
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("generation failed, answering with fallback",
			"tenant_id", cfg.TenantID, "error", err)
		result.Answer = cfg.Fallback
		result.AnswerSource = domain.AnswerSourceFallback
		result.Sources = []string{}
		result.FallbackUsed = true
		result.Degraded = true
		return
	}

	result.Answer = answer
}

// FormatContext builds the readable context block handed to the generator:
// one "Source:" header per match, blocks separated by a rule.
func FormatContext(matches []domain.RetrievedMatch) string {
	blocks := make([]string, 0, len(matches))
	for _, match := range matches {
		blocks = append(blocks, fmt.Sprintf("Source: %s\n\n%s", match.Source, strings.TrimSpace(match.Content)))
	}
	return strings.Join(blocks, "\n\n---\n\n")
}
