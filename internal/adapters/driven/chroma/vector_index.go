package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driven"
	"github.com/custodia-labs/supportbot-core/internal/retry"
)

// Verify interface compliance
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex implements driven.VectorIndex against the Chroma REST API.
// Collections are created lazily with cosine distance; the reported score
// is 1 - distance, clamped into [0,1].
type VectorIndex struct {
	baseURL    string
	httpClient *http.Client
	retryCfg   retry.Config

	mu          sync.Mutex
	collections map[string]string // collection name -> chroma id
}

// Config holds Chroma connection configuration
type Config struct {
	// BaseURL is the Chroma endpoint (e.g., http://localhost:8000)
	BaseURL string

	// Timeout for HTTP requests
	Timeout time.Duration

	// Retry bounds retries of failed calls
	Retry retry.Config
}

// DefaultConfig returns sensible defaults
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
		Retry:   retry.DefaultConfig(),
	}
}

// NewVectorIndex creates a new Chroma-backed VectorIndex
func NewVectorIndex(cfg Config) *VectorIndex {
	return &VectorIndex{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		retryCfg:    cfg.Retry,
		collections: make(map[string]string),
	}
}

type collectionRequest struct {
	Name        string            `json:"name"`
	GetOrCreate bool              `json:"get_or_create"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type upsertRequest struct {
	IDs        []string            `json:"ids"`
	Embeddings [][]float32         `json:"embeddings"`
	Metadatas  []map[string]string `json:"metadatas"`
	Documents  []string            `json:"documents"`
}

type queryRequest struct {
	QueryEmbeddings [][]float32 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

type queryResponse struct {
	Documents [][]string            `json:"documents"`
	Metadatas [][]map[string]string `json:"metadatas"`
	Distances [][]float64           `json:"distances"`
}

// Upsert writes chunks and their embeddings into a collection.
func (v *VectorIndex) Upsert(ctx context.Context, collection string, chunks []domain.Chunk, embeddings [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: %d chunks but %d embeddings", domain.ErrInvalidInput, len(chunks), len(embeddings))
	}

	collectionID, err := v.collectionID(ctx, collection)
	if err != nil {
		return err
	}

	req := upsertRequest{
		IDs:        make([]string, len(chunks)),
		Embeddings: embeddings,
		Metadatas:  make([]map[string]string, len(chunks)),
		Documents:  make([]string, len(chunks)),
	}
	for i, chunk := range chunks {
		req.IDs[i] = chunk.ID
		req.Metadatas[i] = chunk.Metadata
		req.Documents[i] = chunk.Content
	}

	path := fmt.Sprintf("/api/v1/collections/%s/upsert", collectionID)
	return retry.Do(ctx, v.retryCfg, func(ctx context.Context) error {
		return v.post(ctx, path, req, nil)
	})
}

// Query returns up to topK nearest chunks, best first.
func (v *VectorIndex) Query(ctx context.Context, collection string, embedding []float32, topK int) ([]domain.IndexMatch, error) {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	collectionID, err := v.collectionID(ctx, collection)
	if err != nil {
		return nil, err
	}

	req := queryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        topK,
		Include:         []string{"documents", "metadatas", "distances"},
	}

	var resp queryResponse
	path := fmt.Sprintf("/api/v1/collections/%s/query", collectionID)
	err = retry.Do(ctx, v.retryCfg, func(ctx context.Context) error {
		return v.post(ctx, path, req, &resp)
	})
	if err != nil {
		return nil, err
	}

	// Chroma nests results per query embedding; we always send exactly one.
	if len(resp.Documents) == 0 {
		return nil, nil
	}

	documents := resp.Documents[0]
	matches := make([]domain.IndexMatch, 0, len(documents))
	for i, content := range documents {
		var metadata map[string]string
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			metadata = resp.Metadatas[0][i]
		}
		var distance float64
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			distance = resp.Distances[0][i]
		}
		matches = append(matches, domain.IndexMatch{
			Content:  content,
			Metadata: metadata,
			Score:    similarityFromDistance(distance),
		})
	}
	return matches, nil
}

// Count returns the number of chunks in a collection.
func (v *VectorIndex) Count(ctx context.Context, collection string) (int, error) {
	collectionID, err := v.collectionID(ctx, collection)
	if err != nil {
		return 0, err
	}

	var count int
	path := fmt.Sprintf("/api/v1/collections/%s/count", collectionID)
	err = retry.Do(ctx, v.retryCfg, func(ctx context.Context) error {
		return v.get(ctx, path, &count)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Reset deletes and recreates a collection.
func (v *VectorIndex) Reset(ctx context.Context, collection string) error {
	if err := v.deleteCollection(ctx, collection); err != nil {
		return err
	}

	v.mu.Lock()
	delete(v.collections, collection)
	v.mu.Unlock()

	_, err := v.collectionID(ctx, collection)
	return err
}

// HealthCheck verifies the Chroma endpoint responds.
func (v *VectorIndex) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/api/v1/heartbeat", nil)
	if err != nil {
		return err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chroma unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("chroma heartbeat failed: %s", resp.Status)
	}
	return nil
}

// collectionID resolves a collection name to its Chroma id, creating the
// collection with cosine distance on first use.
func (v *VectorIndex) collectionID(ctx context.Context, collection string) (string, error) {
	if collection == "" {
		return "", fmt.Errorf("%w: collection must not be empty", domain.ErrInvalidInput)
	}

	v.mu.Lock()
	id, ok := v.collections[collection]
	v.mu.Unlock()
	if ok {
		return id, nil
	}

	req := collectionRequest{
		Name:        collection,
		GetOrCreate: true,
		Metadata:    map[string]string{"hnsw:space": "cosine"},
	}

	var resp collectionResponse
	err := retry.Do(ctx, v.retryCfg, func(ctx context.Context) error {
		return v.post(ctx, "/api/v1/collections", req, &resp)
	})
	if err != nil {
		return "", fmt.Errorf("ensure collection %q: %w", collection, err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("ensure collection %q: empty id in response", collection)
	}

	v.mu.Lock()
	v.collections[collection] = resp.ID
	v.mu.Unlock()
	return resp.ID, nil
}

func (v *VectorIndex) deleteCollection(ctx context.Context, collection string) error {
	path := "/api/v1/collections/" + url.PathEscape(collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, v.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// A missing collection is already the desired state.
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chroma delete collection failed: %s - %s", resp.Status, string(body))
	}
	return nil
}

func (v *VectorIndex) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chroma request failed: %s - %s", resp.Status, string(respBody))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (v *VectorIndex) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chroma request failed: %s - %s", resp.Status, string(respBody))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// similarityFromDistance converts a cosine distance into a similarity in
// [0,1]. Chroma reports distance = 1 - cosine, so similarity = 1 - distance;
// clamping absorbs float drift at the edges.
func similarityFromDistance(distance float64) float64 {
	similarity := 1 - distance
	if similarity < 0 {
		return 0
	}
	if similarity > 1 {
		return 1
	}
	return similarity
}
