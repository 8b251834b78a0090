package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// ChatRequest is an inbound support question
// @Description Support question for a tenant's knowledge base
type ChatRequest struct {
	UserID  string `json:"user_id,omitempty" example:"u-1042"`
	Message string `json:"message" example:"How do I change my billing plan?"`
}

// IngestDocument is an inline document in an ingestion request
type IngestDocument struct {
	ID       string            `json:"id" example:"docs/billing.md"`
	Path     string            `json:"path,omitempty" example:"docs/billing.md"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IngestRequest asks for documents or a directory to be ingested
// @Description Ingestion request; provide either inline documents or a directory
type IngestRequest struct {
	Collection string           `json:"collection" example:"acme_docs"`
	Directory  string           `json:"directory,omitempty" example:"/data/docs"`
	Documents  []IngestDocument `json:"documents,omitempty"`

	// Async enqueues the work instead of ingesting inline. Requires a
	// task queue; falls back to synchronous ingestion without one.
	Async bool `json:"async,omitempty"`
}

// IngestResponse reports what an ingestion request did
type IngestResponse struct {
	Status  string              `json:"status" example:"completed"`
	TaskIDs []string            `json:"task_ids,omitempty"`
	Stats   *domain.IngestStats `json:"stats,omitempty"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns readiness, checking the database and vector index when configured
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A dependency is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	if s.index != nil {
		if err := s.index.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "vector index unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleToken godoc
// @Summary      Issue a tenant access token
// @Description  Exchange a tenant API key for a short-lived bearer token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.TokenRequest  true  "Tenant credentials"
// @Success      200      {object}  domain.TokenResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials"
// @Failure      503      {object}  ErrorResponse  "Authentication not configured"
// @Router       /api/v1/auth/token [post]
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if s.authService == nil {
		writeError(w, http.StatusServiceUnavailable, "authentication not configured")
		return
	}

	var req domain.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Token(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Chat endpoint

// handleChat godoc
// @Summary      Answer a support question
// @Description  Retrieves tenant-scoped context and answers the question, falling back to the tenant's fallback message when nothing relevant is found
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      ChatRequest  true  "Support question"
// @Success      200      {object}  domain.AnswerResult
// @Failure      400      {object}  ErrorResponse  "Invalid request body or empty message"
// @Failure      401      {object}  ErrorResponse  "Authentication required"
// @Router       /api/v1/chat [post]
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tc, _ := GetTenantContext(r.Context())

	result, err := s.answerService.Answer(r.Context(), domain.AnswerRequest{
		UserID:   req.UserID,
		TenantID: tc.TenantID,
		Message:  req.Message,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Ingestion endpoints

// handleIngest godoc
// @Summary      Ingest documents
// @Description  Chunks, embeds and indexes inline documents or a directory into a collection. With async, the work is enqueued instead.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      IngestRequest  true  "Ingestion request"
// @Success      200      {object}  IngestResponse  "Synchronous ingestion completed"
// @Success      202      {object}  IngestResponse  "Tasks enqueued"
// @Failure      400      {object}  ErrorResponse   "Invalid request"
// @Failure      404      {object}  ErrorResponse   "Directory not found"
// @Failure      503      {object}  ErrorResponse   "Embedding service unavailable"
// @Router       /api/v1/ingest [post]
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Collection == "" {
		writeError(w, http.StatusBadRequest, "collection is required")
		return
	}
	if req.Directory == "" && len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "provide documents or a directory")
		return
	}

	if req.Async && s.taskQueue != nil {
		s.enqueueIngest(w, r, req)
		return
	}

	stats := &domain.IngestStats{}
	for _, d := range req.Documents {
		doc := &domain.Document{
			ID:       d.ID,
			Path:     d.Path,
			Content:  d.Content,
			Metadata: d.Metadata,
		}
		docStats, err := s.ingestService.IngestDocument(r.Context(), req.Collection, doc)
		if err != nil {
			writeIngestError(w, err)
			return
		}
		stats.Documents += docStats.Documents
		stats.Chunks += docStats.Chunks
	}

	if req.Directory != "" {
		dirStats, err := s.ingestService.IngestDirectory(r.Context(), req.Collection, req.Directory)
		if err != nil {
			writeIngestError(w, err)
			return
		}
		stats.Documents += dirStats.Documents
		stats.Chunks += dirStats.Chunks
	}

	writeJSON(w, http.StatusOK, IngestResponse{Status: "completed", Stats: stats})
}

func (s *Server) enqueueIngest(w http.ResponseWriter, r *http.Request, req IngestRequest) {
	taskIDs := make([]string, 0, len(req.Documents)+1)

	for _, d := range req.Documents {
		task := domain.NewIngestDocumentTask(req.Collection, d.ID, d.Path, d.Content)
		if err := s.taskQueue.Enqueue(r.Context(), task); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to enqueue task")
			return
		}
		taskIDs = append(taskIDs, task.ID)
	}

	if req.Directory != "" {
		task := domain.NewIngestDirectoryTask(req.Collection, req.Directory)
		if err := s.taskQueue.Enqueue(r.Context(), task); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to enqueue task")
			return
		}
		taskIDs = append(taskIDs, task.ID)
	}

	writeJSON(w, http.StatusAccepted, IngestResponse{Status: "enqueued", TaskIDs: taskIDs})
}

// handleCollectionStats godoc
// @Summary      Collection statistics
// @Description  Returns the chunk count of a collection
// @Tags         Ingestion
// @Produce      json
// @Param        collection  path      string  true  "Collection name"
// @Success      200         {object}  domain.CollectionStats
// @Failure      503         {object}  ErrorResponse  "Vector index unavailable"
// @Router       /api/v1/collections/{collection}/stats [get]
func (s *Server) handleCollectionStats(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")

	stats, err := s.ingestService.CollectionStats(r.Context(), collection)
	if err != nil {
		writeIngestError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleCollectionReset godoc
// @Summary      Reset a collection
// @Description  Deletes and recreates a collection, dropping all indexed chunks
// @Tags         Ingestion
// @Produce      json
// @Param        collection  path      string  true  "Collection name"
// @Success      200         {object}  StatusResponse
// @Failure      400         {object}  ErrorResponse  "Invalid collection"
// @Failure      503         {object}  ErrorResponse  "Vector index unavailable"
// @Router       /api/v1/collections/{collection}/reset [post]
func (s *Server) handleCollectionReset(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")

	if err := s.ingestService.ResetCollection(r.Context(), collection); err != nil {
		writeIngestError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// Analytics endpoints

// handleGetAnalytics godoc
// @Summary      Usage analytics snapshot
// @Description  Returns aggregated, anonymized usage counters per tenant and intent
// @Tags         Analytics
// @Produce      json
// @Success      200  {object}  domain.Snapshot
// @Router       /api/v1/analytics [get]
func (s *Server) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.analyticsService.Snapshot())
}

// handleResetAnalytics godoc
// @Summary      Reset analytics counters
// @Description  Clears all usage counters
// @Tags         Analytics
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /api/v1/analytics/reset [post]
func (s *Server) handleResetAnalytics(w http.ResponseWriter, r *http.Request) {
	s.analyticsService.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// Tenant administration endpoints

// handleListTenants godoc
// @Summary      List configured tenants
// @Description  Returns all tenant configurations in table order
// @Tags         Tenants
// @Produce      json
// @Success      200  {array}  domain.TenantConfig
// @Router       /api/v1/tenants [get]
func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tenantService.List())
}

// handleReloadTenants godoc
// @Summary      Reload the tenant table
// @Description  Re-reads the tenant configuration and installs it atomically
// @Tags         Tenants
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      500  {object}  ErrorResponse  "Reload failed; previous table kept"
// @Router       /api/v1/tenants/reload [post]
func (s *Server) handleReloadTenants(w http.ResponseWriter, r *http.Request) {
	if err := s.tenantService.Reload(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

// writeIngestError maps ingestion errors to HTTP status codes
func writeIngestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
