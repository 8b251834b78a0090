package main

// @title           SupportBot Core API
// @version         1.0
// @description     Multi-tenant retrieval-augmented support answer API. SupportBot Core answers customer questions from each tenant's own knowledge base, with a per-tenant fallback when nothing relevant is found.

// @contact.name   SupportBot OSS
// @contact.url    https://github.com/custodia-labs/supportbot-core/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/custodia-labs/supportbot-core/docs"
	"github.com/custodia-labs/supportbot-core/internal/adapters/driven/ai"
	"github.com/custodia-labs/supportbot-core/internal/adapters/driven/auth"
	"github.com/custodia-labs/supportbot-core/internal/adapters/driven/chroma"
	"github.com/custodia-labs/supportbot-core/internal/adapters/driven/postgres"
	redisqueue "github.com/custodia-labs/supportbot-core/internal/adapters/driven/queue/redis"
	redisadapter "github.com/custodia-labs/supportbot-core/internal/adapters/driven/redis"
	"github.com/custodia-labs/supportbot-core/internal/adapters/driving/http"
	"github.com/custodia-labs/supportbot-core/internal/core/domain"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driven"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driving"
	"github.com/custodia-labs/supportbot-core/internal/core/services"
	"github.com/custodia-labs/supportbot-core/internal/runtime"
	"github.com/custodia-labs/supportbot-core/internal/worker"
	"github.com/redis/go-redis/v9"
)

var version = "dev"

func main() {
	// Get run mode from environment (RUN_MODE) or command line arg
	mode := getEnv("RUN_MODE", "all")
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	log.Printf("supportbot-core %s starting in %s mode", version, mode)

	// Configuration from environment
	jwtSecret := getEnv("JWT_SECRET", "development-secret-change-in-production")
	port := getEnvInt("PORT", 8080)
	databaseURL := getEnv("DATABASE_URL", "")
	redisURL := getEnv("REDIS_URL", "")
	chromaURL := getEnv("CHROMA_URL", "http://localhost:8000")
	tenantConfigPath := getEnv("TENANT_CONFIG_PATH", "")

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== Initialize PostgreSQL (optional document bookkeeping) =====
	var db *postgres.DB
	var documentStore driven.DocumentStore
	if databaseURL != "" {
		log.Println("Connecting to PostgreSQL...")
		dbConfig := postgres.Config{
			URL:             databaseURL,
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300)) * time.Second,
			ConnMaxIdleTime: time.Duration(getEnvInt("DB_CONN_MAX_IDLE_SEC", 60)) * time.Second,
		}
		var err error
		db, err = postgres.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Initialize schema (idempotent)
		if err := db.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		documentStore = postgres.NewDocumentStore(db)
		log.Println("PostgreSQL connected and schema initialized")
	} else {
		log.Println("No DATABASE_URL set, document bookkeeping disabled")
	}

	// ===== Initialize Redis (optional) =====
	var redisClient *redis.Client
	if redisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== Initialize Chroma =====
	log.Println("Connecting to Chroma...")
	vectorIndex := chroma.NewVectorIndex(chroma.DefaultConfig(chromaURL))
	if err := vectorIndex.HealthCheck(ctx); err != nil {
		log.Printf("Warning: Chroma health check failed: %v (retrieval may not work)", err)
	} else {
		log.Println("Chroma connected")
	}

	// ===== Task Queue + Metrics Store (Redis only) =====
	var taskQueue driven.TaskQueue
	var metricsStore driven.MetricsStore
	if redisClient != nil {
		var err error
		taskQueue, err = redisqueue.NewQueue(redisClient, fmt.Sprintf("worker-%d", os.Getpid()))
		if err != nil {
			log.Fatalf("Failed to create task queue: %v", err)
		}
		metricsStore = redisadapter.NewMetricsStore(redisClient)
		log.Println("Using Redis task queue and metrics store")
	} else {
		log.Println("No REDIS_URL set, ingestion runs synchronously and analytics stay in memory")
	}

	// ===== AI services =====
	runtimeServices := runtime.NewServices()
	aiFactory := ai.NewFactory()

	embeddingSettings := &domain.EmbeddingSettings{
		Provider: domain.AIProvider(getEnv("EMBEDDING_PROVIDER", "")),
		APIKey:   getEnv("EMBEDDING_API_KEY", ""),
		Model:    getEnv("EMBEDDING_MODEL", ""),
		BaseURL:  getEnv("EMBEDDING_BASE_URL", ""),
	}
	embedder, err := aiFactory.CreateEmbeddingService(embeddingSettings)
	if err != nil {
		log.Fatalf("Failed to create embedding service: %v", err)
	}
	if err := runtimeServices.ValidateAndSetEmbedding(ctx, embedder); err != nil {
		log.Printf("Warning: embedding service unavailable: %v (retrieval disabled)", err)
	}

	llmSettings := &domain.LLMSettings{
		Provider:    domain.AIProvider(getEnv("LLM_PROVIDER", "")),
		APIKey:      getEnv("LLM_API_KEY", ""),
		Model:       getEnv("LLM_MODEL", ""),
		BaseURL:     getEnv("LLM_BASE_URL", ""),
		Temperature: getEnvFloat("LLM_TEMPERATURE", 0.2),
		MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 512),
	}
	llm, err := aiFactory.CreateLLMService(llmSettings)
	if err != nil {
		log.Fatalf("Failed to create LLM service: %v", err)
	}
	if err := runtimeServices.ValidateAndSetLLM(ctx, llm); err != nil {
		log.Printf("Warning: LLM service unavailable: %v (answers stay ungenerated)", err)
	}

	log.Printf("AI config: embedding=%t, llm=%t",
		runtimeServices.EmbeddingService() != nil,
		runtimeServices.LLMService() != nil)

	// ===== Tenant registry =====
	baseConfig := domain.TenantConfig{
		Collection:   getEnv("SUPPORT_BOT_COLLECTION", "faq"),
		TopK:         getEnvInt("SUPPORT_BOT_TOP_K", domain.DefaultTopK),
		MinScore:     getEnvFloat("SUPPORT_BOT_MIN_SCORE", 0),
		Fallback:     getEnv("SUPPORT_BOT_FALLBACK", "Sorry, I could not find an answer. Please contact support."),
		SystemPrompt: getEnv("SUPPORT_BOT_SYSTEM_PROMPT", ""),
	}

	var tenantService driving.TenantService
	if tenantConfigPath != "" {
		tenantService, err = services.NewTenantRegistry(ctx, tenantTableLoader(tenantConfigPath, baseConfig), slog.Default())
		if err != nil {
			log.Fatalf("Failed to load tenant table from %s: %v", tenantConfigPath, err)
		}
	} else {
		table, err := domain.NewTenantTable(baseConfig, nil)
		if err != nil {
			log.Fatalf("Invalid base tenant config: %v", err)
		}
		tenantService = services.NewStaticTenantRegistry(table, slog.Default())
		log.Println("No TENANT_CONFIG_PATH set, running single-tenant with defaults")
	}

	// ===== Driven adapters =====
	authAdapter := auth.NewAdapter(jwtSecret)

	// ===== Core services =====
	chunkParams := domain.ChunkParams{
		MaxSize: getEnvInt("CHUNK_SIZE", 0),
		Overlap: getEnvInt("CHUNK_OVERLAP", 0),
	}

	aggregator := services.NewAggregator()
	engine := services.NewRetrievalEngine(vectorIndex, runtimeServices, slog.Default())
	answerService := services.NewAnswerService(tenantService, engine, aggregator, runtimeServices, slog.Default())
	ingestService := services.NewIngestService(vectorIndex, documentStore, runtimeServices, chunkParams, slog.Default())
	authService := services.NewAuthService(tenantService, authAdapter)

	switch mode {
	case "api":
		runAPI(port, answerService, ingestService, aggregator, tenantService, authService, taskQueue, db, vectorIndex)

	case "worker":
		runWorkerMode(ctx, taskQueue, ingestService, aggregator, metricsStore)

	case "all":
		// Start worker in background, run API in foreground (blocks)
		if taskQueue != nil {
			go runWorkerMode(ctx, taskQueue, ingestService, aggregator, metricsStore)
		}
		runAPI(port, answerService, ingestService, aggregator, tenantService, authService, taskQueue, db, vectorIndex)

	default:
		log.Fatalf("Unknown mode: %s (use: api, worker, or all)", mode)
	}
}

func runAPI(
	port int,
	answerService driving.AnswerService,
	ingestService driving.IngestService,
	analyticsService driving.AnalyticsService,
	tenantService driving.TenantService,
	authService driving.AuthService,
	taskQueue driven.TaskQueue,
	db *postgres.DB,
	vectorIndex *chroma.VectorIndex,
) {
	cfg := http.Config{
		Host:        "0.0.0.0",
		Port:        port,
		Version:     version,
		RequireAuth: getEnvBool("REQUIRE_AUTH", false),
	}

	var dbPinger http.Pinger
	if db != nil {
		dbPinger = db
	}

	server := http.NewServer(
		cfg,
		answerService,
		ingestService,
		analyticsService,
		tenantService,
		authService,
		taskQueue,
		dbPinger,
		healthPinger(vectorIndex.HealthCheck),
	)

	log.Printf("API server starting on :%d", port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// runWorkerMode starts the ingestion worker.
// It processes queued ingestion tasks and flushes analytics snapshots.
func runWorkerMode(
	ctx context.Context,
	taskQueue driven.TaskQueue,
	ingestService driving.IngestService,
	analyticsService driving.AnalyticsService,
	metricsStore driven.MetricsStore,
) {
	if taskQueue == nil {
		log.Fatal("Worker mode requires REDIS_URL")
	}

	log.Println("Starting worker mode...")

	w := worker.New(worker.Config{
		TaskQueue:      taskQueue,
		Ingest:         ingestService,
		Analytics:      analyticsService,
		Metrics:        metricsStore,
		Logger:         slog.Default(),
		Concurrency:    getEnvInt("WORKER_CONCURRENCY", 2),
		DequeueTimeout: time.Duration(getEnvInt("WORKER_DEQUEUE_TIMEOUT", 5)) * time.Second,
		FlushInterval:  time.Duration(getEnvInt("METRICS_FLUSH_INTERVAL_SEC", 60)) * time.Second,
	})

	if err := w.Start(ctx); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	log.Println("Worker started, processing tasks...")
	log.Println("Worker handles:")
	log.Println("  - ingest_document: Ingest a single inline document")
	log.Println("  - ingest_directory: Ingest every supported file under a directory")
	log.Println("  - reindex: Reset a collection and re-ingest a directory")

	// Wait for context cancellation
	<-ctx.Done()

	log.Println("Stopping worker...")
	w.Stop()
	log.Println("Worker stopped")
}

// tenantTableLoader reads and parses the tenant table file.
// The registry calls it at startup and on every reload request.
func tenantTableLoader(path string, base domain.TenantConfig) services.TenantTableLoader {
	return func(ctx context.Context) (*domain.TenantTable, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read tenant table %s: %w", path, err)
		}
		return domain.ParseTenantTable(data, base)
	}
}

// healthPinger adapts a health check function to the server's Pinger
type healthPinger func(ctx context.Context) error

func (f healthPinger) Ping(ctx context.Context) error { return f(ctx) }

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
