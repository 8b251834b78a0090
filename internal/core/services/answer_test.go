package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/supportbot-core/internal/runtime"
)

type answerFixture struct {
	index     *mocks.MockVectorIndex
	embedder  *mocks.MockEmbeddingService
	llm       *mocks.MockLLMService
	services  *runtime.Services
	analytics *Aggregator
	svc       *answerService
}

func newAnswerFixture(t *testing.T, withLLM bool) *answerFixture {
	t.Helper()

	f := &answerFixture{
		index:     mocks.NewMockVectorIndex(),
		embedder:  mocks.NewMockEmbeddingService(),
		analytics: NewAggregator(),
		services:  runtime.NewServices(),
	}
	f.services.SetEmbeddingService(f.embedder)
	if withLLM {
		f.llm = mocks.NewMockLLMService("Here is your answer.")
		f.services.SetLLMService(f.llm)
	}

	table := testTenantTable(t, []domain.TenantConfig{
		{TenantID: "acme", Collection: "acme_docs", TopK: 3, Fallback: "Acme fallback.", SystemPrompt: "You are Acme's support bot."},
	})
	registry := NewStaticTenantRegistry(table, nil)
	engine := NewRetrievalEngine(f.index, f.services, nil)

	f.svc = NewAnswerService(registry, engine, f.analytics, f.services, nil).(*answerService)
	return f
}

func (f *answerFixture) seed(t *testing.T, collection string, chunks []domain.Chunk) {
	t.Helper()
	seedCollection(t, f.index, f.embedder, collection, chunks)
}

func TestAnswerService_ContextAnswer(t *testing.T) {
	f := newAnswerFixture(t, true)
	f.seed(t, "acme_docs", []domain.Chunk{
		{ID: "billing_chunk_0", Content: "Refunds are processed within 5 business days.", Metadata: map[string]string{"filename": "billing.md"}},
	})

	result, err := f.svc.Answer(context.Background(), domain.AnswerRequest{
		UserID:   "u1",
		TenantID: "acme",
		Message:  "How long do invoice refunds take to be processed?",
	})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if result.FallbackUsed {
		t.Error("FallbackUsed = true, want false")
	}
	if result.AnswerSource != domain.AnswerSourceContext {
		t.Errorf("AnswerSource = %q, want context", result.AnswerSource)
	}
	if result.Answer != "Here is your answer." {
		t.Errorf("Answer = %q, want generated text", result.Answer)
	}
	if len(result.Sources) != 1 || result.Sources[0] != "billing.md" {
		t.Errorf("Sources = %v, want [billing.md]", result.Sources)
	}

	// The generator received the tenant prompt and the assembled context.
	if f.llm.LastSystem != "You are Acme's support bot." {
		t.Errorf("system prompt = %q", f.llm.LastSystem)
	}
	if !strings.Contains(f.llm.LastContext, "Source: billing.md") {
		t.Errorf("context block missing source header: %q", f.llm.LastContext)
	}
	if !strings.Contains(f.llm.LastMessage, "User ID: u1") || !strings.Contains(f.llm.LastMessage, "Tenant: acme") {
		t.Errorf("user message missing identity fields: %q", f.llm.LastMessage)
	}

	snap := f.analytics.Snapshot()
	if snap.TotalQueries != 1 || snap.FallbackCount != 0 {
		t.Errorf("analytics = %d queries / %d fallbacks, want 1/0", snap.TotalQueries, snap.FallbackCount)
	}
	if snap.IntentCounts["billing"] != 1 {
		t.Errorf("IntentCounts = %v, want billing: 1", snap.IntentCounts)
	}
}

func TestAnswerService_FallbackWhenNothingRetrieved(t *testing.T) {
	f := newAnswerFixture(t, true)

	result, err := f.svc.Answer(context.Background(), domain.AnswerRequest{
		UserID:   "u1",
		TenantID: "acme",
		Message:  "Is anyone there?",
	})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if !result.FallbackUsed {
		t.Error("FallbackUsed = false, want true")
	}
	if result.AnswerSource != domain.AnswerSourceFallback {
		t.Errorf("AnswerSource = %q, want fallback", result.AnswerSource)
	}
	if result.Answer != "Acme fallback." {
		t.Errorf("Answer = %q, want tenant fallback text", result.Answer)
	}
	if f.llm.Calls != 0 {
		t.Errorf("LLM called %d times on the fallback path, want 0", f.llm.Calls)
	}

	snap := f.analytics.Snapshot()
	if snap.FallbackCount != 1 {
		t.Errorf("FallbackCount = %d, want 1", snap.FallbackCount)
	}
}

func TestAnswerService_EmptyMessage(t *testing.T) {
	f := newAnswerFixture(t, true)

	_, err := f.svc.Answer(context.Background(), domain.AnswerRequest{TenantID: "acme", Message: "   "})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Answer() error = %v, want ErrInvalidInput", err)
	}
	if snap := f.analytics.Snapshot(); snap.TotalQueries != 0 {
		t.Errorf("invalid input recorded %d queries, want 0", snap.TotalQueries)
	}
}

func TestAnswerService_UnknownTenantUsesDefault(t *testing.T) {
	f := newAnswerFixture(t, true)

	result, err := f.svc.Answer(context.Background(), domain.AnswerRequest{
		TenantID: "nobody",
		Message:  "hello",
	})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if result.TenantID != domain.DefaultTenantID {
		t.Errorf("TenantID = %q, want %q", result.TenantID, domain.DefaultTenantID)
	}
	if result.Answer != testBaseConfig().Fallback {
		t.Errorf("Answer = %q, want default fallback", result.Answer)
	}
}

func TestAnswerService_CancelledContextRecordsNothing(t *testing.T) {
	f := newAnswerFixture(t, true)
	f.embedder.FailEmbeds(context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Answer(ctx, domain.AnswerRequest{TenantID: "acme", Message: "hello"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Answer() error = %v, want context.Canceled", err)
	}
	if snap := f.analytics.Snapshot(); snap.TotalQueries != 0 {
		t.Errorf("cancelled query recorded %d queries, want 0", snap.TotalQueries)
	}
}

func TestAnswerService_GenerationFailureDegradesToFallback(t *testing.T) {
	f := newAnswerFixture(t, true)
	f.llm.FailGenerations(errors.New("model overloaded"))
	f.seed(t, "acme_docs", []domain.Chunk{
		{ID: "billing_chunk_0", Content: "Refunds take 5 days.", Metadata: map[string]string{"filename": "billing.md"}},
	})

	result, err := f.svc.Answer(context.Background(), domain.AnswerRequest{
		TenantID: "acme",
		Message:  "refund timing?",
	})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if !result.FallbackUsed || result.AnswerSource != domain.AnswerSourceFallback {
		t.Errorf("result = %+v, want degraded to fallback", result)
	}
	if result.Answer != "Acme fallback." {
		t.Errorf("Answer = %q, want tenant fallback text", result.Answer)
	}
	if !result.Degraded {
		t.Error("Degraded = false, want true")
	}
}

func TestAnswerService_NoLLMLeavesAnswerEmpty(t *testing.T) {
	f := newAnswerFixture(t, false)
	f.seed(t, "acme_docs", []domain.Chunk{
		{ID: "billing_chunk_0", Content: "Refunds take 5 days.", Metadata: map[string]string{"filename": "billing.md"}},
	})

	result, err := f.svc.Answer(context.Background(), domain.AnswerRequest{
		TenantID: "acme",
		Message:  "refund timing?",
	})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if result.FallbackUsed {
		t.Error("FallbackUsed = true, want false")
	}
	if result.Answer != "" {
		t.Errorf("Answer = %q, want empty without a generator", result.Answer)
	}
	if len(result.Sources) != 1 {
		t.Errorf("Sources = %v, want the retrieved source", result.Sources)
	}
}

func TestFormatContext(t *testing.T) {
	got := FormatContext([]domain.RetrievedMatch{
		{Content: " first chunk \n", Source: "a.md"},
		{Content: "second chunk", Source: "b.md"},
	})
	want := "Source: a.md\n\nfirst chunk\n\n---\n\nSource: b.md\n\nsecond chunk"
	if got != want {
		t.Errorf("FormatContext() = %q, want %q", got, want)
	}
}
