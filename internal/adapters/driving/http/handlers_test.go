package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driven/mocks"
)

// Mock services for testing

type mockAnswerService struct {
	answerFn func(ctx context.Context, req domain.AnswerRequest) (*domain.AnswerResult, error)
}

func (m *mockAnswerService) Answer(ctx context.Context, req domain.AnswerRequest) (*domain.AnswerResult, error) {
	if m.answerFn != nil {
		return m.answerFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

type mockIngestService struct {
	ingestDocumentFn  func(ctx context.Context, collection string, doc *domain.Document) (*domain.IngestStats, error)
	ingestDirectoryFn func(ctx context.Context, collection, dir string) (*domain.IngestStats, error)
	resetFn           func(ctx context.Context, collection string) error
	statsFn           func(ctx context.Context, collection string) (*domain.CollectionStats, error)
}

func (m *mockIngestService) IngestDocument(ctx context.Context, collection string, doc *domain.Document) (*domain.IngestStats, error) {
	if m.ingestDocumentFn != nil {
		return m.ingestDocumentFn(ctx, collection, doc)
	}
	return nil, errors.New("not implemented")
}

func (m *mockIngestService) IngestDirectory(ctx context.Context, collection, dir string) (*domain.IngestStats, error) {
	if m.ingestDirectoryFn != nil {
		return m.ingestDirectoryFn(ctx, collection, dir)
	}
	return nil, errors.New("not implemented")
}

func (m *mockIngestService) ResetCollection(ctx context.Context, collection string) error {
	if m.resetFn != nil {
		return m.resetFn(ctx, collection)
	}
	return nil
}

func (m *mockIngestService) CollectionStats(ctx context.Context, collection string) (*domain.CollectionStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, collection)
	}
	return nil, errors.New("not implemented")
}

type mockAnalyticsService struct {
	snapshot domain.Snapshot
	resets   int
}

func (m *mockAnalyticsService) Snapshot() domain.Snapshot { return m.snapshot }
func (m *mockAnalyticsService) Reset()                    { m.resets++ }

type mockTenantService struct {
	tenants  []domain.TenantConfig
	reloadFn func(ctx context.Context) error
}

func (m *mockTenantService) Resolve(tenantID string) domain.TenantConfig {
	for _, t := range m.tenants {
		if t.TenantID == tenantID {
			return t
		}
	}
	return domain.TenantConfig{TenantID: domain.DefaultTenantID}
}

func (m *mockTenantService) List() []domain.TenantConfig { return m.tenants }

func (m *mockTenantService) Reload(ctx context.Context) error {
	if m.reloadFn != nil {
		return m.reloadFn(ctx)
	}
	return nil
}

type mockTokenService struct {
	tokenFn    func(ctx context.Context, req domain.TokenRequest) (*domain.TokenResponse, error)
	validateFn func(ctx context.Context, token string) (*domain.TokenClaims, error)
}

func (m *mockTokenService) Token(ctx context.Context, req domain.TokenRequest) (*domain.TokenResponse, error) {
	if m.tokenFn != nil {
		return m.tokenFn(ctx, req)
	}
	return nil, domain.ErrUnauthorized
}

func (m *mockTokenService) Validate(ctx context.Context, token string) (*domain.TokenClaims, error) {
	if m.validateFn != nil {
		return m.validateFn(ctx, token)
	}
	return nil, domain.ErrTokenInvalid
}

// testServer builds a server with sensible mock defaults; override fields
// on the returned mocks before issuing requests.
type testServer struct {
	server    *Server
	answer    *mockAnswerService
	ingest    *mockIngestService
	analytics *mockAnalyticsService
	tenants   *mockTenantService
	auth      *mockTokenService
	queue     *mocks.MockTaskQueue
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		answer:    &mockAnswerService{},
		ingest:    &mockIngestService{},
		analytics: &mockAnalyticsService{},
		tenants:   &mockTenantService{},
		auth:      &mockTokenService{},
		queue:     mocks.NewMockTaskQueue(),
	}

	cfg := DefaultConfig()
	cfg.Version = "test"
	ts.server = NewServer(cfg, ts.answer, ts.ingest, ts.analytics, ts.tenants, ts.auth, ts.queue, nil, nil)
	return ts
}

func doRequest(ts *testServer, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := doRequest(ts, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %q", resp["status"])
	}
}

func TestHandleVersion(t *testing.T) {
	ts := newTestServer(t)

	rec := doRequest(ts, http.MethodGet, "/version", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp["version"] != "test" {
		t.Errorf("expected version test, got %q", resp["version"])
	}
}

func TestHandleReady_DependencyDown(t *testing.T) {
	ts := newTestServer(t)
	ts.server.index = pingerFunc(func(ctx context.Context) error {
		return errors.New("connection refused")
	})

	rec := doRequest(ts, http.MethodGet, "/ready", nil, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHandleChat(t *testing.T) {
	ts := newTestServer(t)

	var gotReq domain.AnswerRequest
	ts.answer.answerFn = func(ctx context.Context, req domain.AnswerRequest) (*domain.AnswerResult, error) {
		gotReq = req
		return &domain.AnswerResult{
			TenantID:     req.TenantID,
			Answer:       "Invoices are issued monthly.",
			AnswerSource: domain.AnswerSourceContext,
			Sources:      []string{"billing.md"},
		}, nil
	}

	rec := doRequest(ts, http.MethodPost, "/api/v1/chat",
		ChatRequest{UserID: "u1", Message: "When are invoices issued?"},
		map[string]string{"X-Tenant-ID": "acme"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if gotReq.TenantID != "acme" {
		t.Errorf("expected tenant acme from header, got %q", gotReq.TenantID)
	}
	if gotReq.UserID != "u1" {
		t.Errorf("expected user u1, got %q", gotReq.UserID)
	}

	var result domain.AnswerResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Answer != "Invoices are issued monthly." {
		t.Errorf("unexpected answer: %q", result.Answer)
	}
	if len(result.Sources) != 1 || result.Sources[0] != "billing.md" {
		t.Errorf("unexpected sources: %v", result.Sources)
	}
}

func TestHandleChat_TokenTenantWins(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.validateFn = func(ctx context.Context, token string) (*domain.TokenClaims, error) {
		if token != "valid-token" {
			return nil, domain.ErrTokenInvalid
		}
		return &domain.TokenClaims{TenantID: "globex", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}

	var gotTenant string
	ts.answer.answerFn = func(ctx context.Context, req domain.AnswerRequest) (*domain.AnswerResult, error) {
		gotTenant = req.TenantID
		return &domain.AnswerResult{TenantID: req.TenantID, Answer: "ok"}, nil
	}

	rec := doRequest(ts, http.MethodPost, "/api/v1/chat",
		ChatRequest{Message: "hello"},
		map[string]string{
			"Authorization": "Bearer valid-token",
			"X-Tenant-ID":   "acme",
		})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotTenant != "globex" {
		t.Errorf("expected token tenant globex to win over header, got %q", gotTenant)
	}
}

func TestHandleChat_InvalidToken(t *testing.T) {
	ts := newTestServer(t)

	rec := doRequest(ts, http.MethodPost, "/api/v1/chat",
		ChatRequest{Message: "hello"},
		map[string]string{"Authorization": "Bearer garbage"})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleChat_EmptyMessage(t *testing.T) {
	ts := newTestServer(t)
	ts.answer.answerFn = func(ctx context.Context, req domain.AnswerRequest) (*domain.AnswerResult, error) {
		return nil, domain.ErrInvalidInput
	}

	rec := doRequest(ts, http.MethodPost, "/api/v1/chat", ChatRequest{Message: ""}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleChat_MalformedBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleIngest_Synchronous(t *testing.T) {
	ts := newTestServer(t)

	var gotCollection string
	ts.ingest.ingestDocumentFn = func(ctx context.Context, collection string, doc *domain.Document) (*domain.IngestStats, error) {
		gotCollection = collection
		return &domain.IngestStats{Documents: 1, Chunks: 3}, nil
	}

	rec := doRequest(ts, http.MethodPost, "/api/v1/ingest", IngestRequest{
		Collection: "acme_docs",
		Documents: []IngestDocument{
			{ID: "billing.md", Content: "Invoices are issued monthly."},
		},
	}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotCollection != "acme_docs" {
		t.Errorf("expected collection acme_docs, got %q", gotCollection)
	}

	var resp IngestResponse
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Status != "completed" {
		t.Errorf("expected status completed, got %q", resp.Status)
	}
	if resp.Stats == nil || resp.Stats.Chunks != 3 {
		t.Errorf("unexpected stats: %+v", resp.Stats)
	}
}

func TestHandleIngest_Async(t *testing.T) {
	ts := newTestServer(t)

	rec := doRequest(ts, http.MethodPost, "/api/v1/ingest", IngestRequest{
		Collection: "acme_docs",
		Directory:  "/data/docs",
		Documents: []IngestDocument{
			{ID: "billing.md", Content: "Invoices are issued monthly."},
		},
		Async: true,
	}, nil)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp IngestResponse
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Status != "enqueued" {
		t.Errorf("expected status enqueued, got %q", resp.Status)
	}
	if len(resp.TaskIDs) != 2 {
		t.Errorf("expected 2 task ids, got %v", resp.TaskIDs)
	}

	n, _ := ts.queue.Len(context.Background())
	if n != 2 {
		t.Errorf("expected 2 enqueued tasks, got %d", n)
	}
}

func TestHandleIngest_MissingCollection(t *testing.T) {
	ts := newTestServer(t)

	rec := doRequest(ts, http.MethodPost, "/api/v1/ingest", IngestRequest{
		Documents: []IngestDocument{{ID: "a.md", Content: "x"}},
	}, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleIngest_NothingToIngest(t *testing.T) {
	ts := newTestServer(t)

	rec := doRequest(ts, http.MethodPost, "/api/v1/ingest", IngestRequest{Collection: "acme_docs"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleIngest_DirectoryNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.ingest.ingestDirectoryFn = func(ctx context.Context, collection, dir string) (*domain.IngestStats, error) {
		return nil, domain.ErrNotFound
	}

	rec := doRequest(ts, http.MethodPost, "/api/v1/ingest", IngestRequest{
		Collection: "acme_docs",
		Directory:  "/missing",
	}, nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleIngest_EmbedderUnavailable(t *testing.T) {
	ts := newTestServer(t)
	ts.ingest.ingestDocumentFn = func(ctx context.Context, collection string, doc *domain.Document) (*domain.IngestStats, error) {
		return nil, domain.ErrServiceUnavailable
	}

	rec := doRequest(ts, http.MethodPost, "/api/v1/ingest", IngestRequest{
		Collection: "acme_docs",
		Documents:  []IngestDocument{{ID: "a.md", Content: "x"}},
	}, nil)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHandleCollectionStats(t *testing.T) {
	ts := newTestServer(t)
	ts.ingest.statsFn = func(ctx context.Context, collection string) (*domain.CollectionStats, error) {
		return &domain.CollectionStats{Collection: collection, Chunks: 42}, nil
	}

	rec := doRequest(ts, http.MethodGet, "/api/v1/collections/acme_docs/stats", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats domain.CollectionStats
	_ = json.NewDecoder(rec.Body).Decode(&stats)
	if stats.Collection != "acme_docs" || stats.Chunks != 42 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestHandleCollectionReset(t *testing.T) {
	ts := newTestServer(t)

	var resetCollection string
	ts.ingest.resetFn = func(ctx context.Context, collection string) error {
		resetCollection = collection
		return nil
	}

	rec := doRequest(ts, http.MethodPost, "/api/v1/collections/acme_docs/reset", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resetCollection != "acme_docs" {
		t.Errorf("expected reset of acme_docs, got %q", resetCollection)
	}
}

func TestHandleGetAnalytics(t *testing.T) {
	ts := newTestServer(t)
	ts.analytics.snapshot = domain.Snapshot{
		TotalQueries:  10,
		FallbackCount: 4,
		IntentCounts:  map[string]uint64{"billing": 6, "other": 4},
		TenantBreakdown: map[string]domain.TenantStats{
			"acme": {Queries: 10, Fallbacks: 4},
		},
		CapturedAt: time.Now(),
	}

	rec := doRequest(ts, http.MethodGet, "/api/v1/analytics", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var snap domain.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snap.TotalQueries != 10 || snap.FallbackCount != 4 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	if snap.IntentCounts["billing"] != 6 {
		t.Errorf("expected 6 billing queries, got %d", snap.IntentCounts["billing"])
	}
}

func TestHandleResetAnalytics(t *testing.T) {
	ts := newTestServer(t)

	rec := doRequest(ts, http.MethodPost, "/api/v1/analytics/reset", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ts.analytics.resets != 1 {
		t.Errorf("expected 1 reset, got %d", ts.analytics.resets)
	}
}

func TestHandleListTenants(t *testing.T) {
	ts := newTestServer(t)
	ts.tenants.tenants = []domain.TenantConfig{
		{TenantID: "acme", Collection: "acme_docs", TopK: 3},
		{TenantID: "globex", Collection: "globex_docs", TopK: 5},
	}

	rec := doRequest(ts, http.MethodGet, "/api/v1/tenants", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var tenants []domain.TenantConfig
	_ = json.NewDecoder(rec.Body).Decode(&tenants)
	if len(tenants) != 2 {
		t.Fatalf("expected 2 tenants, got %d", len(tenants))
	}
	if tenants[0].TenantID != "acme" || tenants[1].TenantID != "globex" {
		t.Errorf("unexpected tenant order: %+v", tenants)
	}
}

func TestHandleReloadTenants_Failure(t *testing.T) {
	ts := newTestServer(t)
	ts.tenants.reloadFn = func(ctx context.Context) error {
		return errors.New("table unreadable")
	}

	rec := doRequest(ts, http.MethodPost, "/api/v1/tenants/reload", nil, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHandleToken(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.tokenFn = func(ctx context.Context, req domain.TokenRequest) (*domain.TokenResponse, error) {
		if req.TenantID == "acme" && req.APIKey == "secret-key" {
			return &domain.TokenResponse{Token: "jwt", ExpiresAt: time.Now().Add(time.Hour)}, nil
		}
		return nil, domain.ErrUnauthorized
	}

	rec := doRequest(ts, http.MethodPost, "/api/v1/auth/token",
		domain.TokenRequest{TenantID: "acme", APIKey: "secret-key"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp domain.TokenResponse
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Token != "jwt" {
		t.Errorf("expected token jwt, got %q", resp.Token)
	}

	rec = doRequest(ts, http.MethodPost, "/api/v1/auth/token",
		domain.TokenRequest{TenantID: "acme", APIKey: "wrong"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
