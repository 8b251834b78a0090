package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/custodia-labs/supportbot-core/internal/core/ports/driven"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	answerService    driving.AnswerService
	ingestService    driving.IngestService
	analyticsService driving.AnalyticsService
	tenantService    driving.TenantService
	authService      driving.AuthService

	// Infrastructure
	taskQueue driven.TaskQueue // optional; nil means synchronous ingestion only
	db        Pinger           // PostgreSQL health check (optional)
	index     Pinger           // vector index health check (optional)

	requireAuth bool
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// RequireAuth rejects chat and ingestion requests without a valid
	// tenant token. Off by default for single-tenant deployments.
	RequireAuth bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	answerService driving.AnswerService,
	ingestService driving.IngestService,
	analyticsService driving.AnalyticsService,
	tenantService driving.TenantService,
	authService driving.AuthService,
	taskQueue driven.TaskQueue, // can be nil
	db Pinger, // can be nil
	index Pinger, // can be nil
) *Server {
	s := &Server{
		router:           http.NewServeMux(),
		version:          cfg.Version,
		answerService:    answerService,
		ingestService:    ingestService,
		analyticsService: analyticsService,
		tenantService:    tenantService,
		authService:      authService,
		taskQueue:        taskQueue,
		db:               db,
		index:            index,
		requireAuth:      cfg.RequireAuth,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	tenantMiddleware := NewTenantMiddleware(s.authService, s.requireAuth)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Auth endpoint (public)
	s.router.HandleFunc("POST /api/v1/auth/token", s.handleToken)

	// Chat endpoint (tenant-scoped)
	s.router.Handle("POST /api/v1/chat",
		tenantMiddleware.ResolveTenant(http.HandlerFunc(s.handleChat)))

	// Ingestion endpoints (tenant-scoped)
	s.router.Handle("POST /api/v1/ingest",
		tenantMiddleware.ResolveTenant(http.HandlerFunc(s.handleIngest)))
	s.router.Handle("GET /api/v1/collections/{collection}/stats",
		tenantMiddleware.ResolveTenant(http.HandlerFunc(s.handleCollectionStats)))
	s.router.Handle("POST /api/v1/collections/{collection}/reset",
		tenantMiddleware.ResolveTenant(http.HandlerFunc(s.handleCollectionReset)))

	// Analytics endpoints
	s.router.HandleFunc("GET /api/v1/analytics", s.handleGetAnalytics)
	s.router.HandleFunc("POST /api/v1/analytics/reset", s.handleResetAnalytics)

	// Tenant administration endpoints
	s.router.HandleFunc("GET /api/v1/tenants", s.handleListTenants)
	s.router.HandleFunc("POST /api/v1/tenants/reload", s.handleReloadTenants)
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}
