package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"hirehub/backend/internal/config"
	"hirehub/backend/internal/handlers"
	"hirehub/backend/internal/realtime"
	"hirehub/backend/internal/repositories"
	"hirehub/backend/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	jobRepo := repositories.NewJobRepository(db)
	candidateRepo := repositories.NewCandidateRepository(db)
	resumeRepo := repositories.NewResumeRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize storage
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize Qdrant
	vectorIndex, err := services.NewVectorIndexService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}
	if err := vectorIndex.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}
	log.Println("✅ Qdrant initialized successfully")

	// Initialize Redis search cache. The matcher works without it, so a
	// missing Redis only costs cache hits.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("⚠️ Redis unavailable, search cache disabled: %v", err)
			redisClient = nil
		} else {
			log.Println("✅ Redis connected successfully")
		}
		cancel()
	}
	searchCache := services.NewSearchCacheService(redisClient, cfg.Redis.CacheTTL)

	// Initialize domain services
	extractorService := services.NewExtractorService()
	resumeService := services.NewResumeService(
		extractorService,
		geminiService,
		vectorIndex,
		resumeRepo,
		cfg.Gemini.RetryMaxAttempts,
	)
	matcherService := services.NewMatcherService(
		geminiService,
		vectorIndex,
		candidateRepo,
		searchCache,
		services.MatcherOptions{
			SimilarityThreshold: cfg.Matching.SimilarityThreshold,
			MatchThreshold:      cfg.Matching.MatchThreshold,
			DefaultMinimumScore: cfg.Matching.DefaultMinimumScore,
			DefaultLimit:        cfg.Matching.DefaultLimit,
		},
	)
	analysisService := services.NewAnalysisService(
		geminiService,
		vectorIndex,
		candidateRepo,
		cfg.Gemini.RetryMaxAttempts,
	)
	log.Println("✅ Services initialized successfully")

	// Initialize signal worker
	signalWorker := services.NewSignalWorker(
		sessionRepo,
		analysisService,
		cfg.Worker.Concurrency,
	)
	ctx := context.Background()
	signalWorker.Start(ctx)

	// Initialize realtime layer
	tokenService := realtime.NewTokenService(
		cfg.Realtime.TokenAPIKey,
		cfg.Realtime.TokenSecret,
		cfg.Realtime.TokenTTL,
	)
	dispatcher := realtime.NewDispatcher(cfg.Realtime.RPCTimeout)
	roomServer := realtime.NewRoomServer(dispatcher)

	interviewService := services.NewInterviewService(
		sessionRepo,
		jobRepo,
		candidateRepo,
		resumeRepo,
		analysisService,
		tokenService,
		signalWorker,
		cfg.Realtime.WsURL,
		cfg.Interview.TotalQuestions,
		cfg.Interview.DefaultDuration,
	)
	interviewService.RegisterProtocol(dispatcher)
	roomServer.SetEventSink(interviewService)
	interviewService.SetRoomCloser(roomServer)
	log.Println("✅ Realtime layer initialized successfully")

	// Initialize handlers
	resumeHandler := handlers.NewResumeHandler(
		resumeService,
		storageService,
		candidateRepo,
		cfg.Storage.MaxFileSize,
	)
	matchHandler := handlers.NewMatchHandler(matcherService)
	interviewHandler := handlers.NewInterviewHandler(interviewService)
	wsHandler := handlers.NewWSHandler(roomServer, tokenService)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "HireHub API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/resumes/parse", resumeHandler.HandleParse)
	api.Post("/candidates/search", matchHandler.HandleSearch)
	api.Get("/candidates/search", matchHandler.HandleBasicSearch)
	api.Post("/interviews/sessions", interviewHandler.HandleCreateSession)
	api.Post("/interviews/sessions/:id/complete", interviewHandler.HandleComplete)
	api.Get("/interviews/sessions/:id", interviewHandler.HandleGetSession)

	// Websocket room attach
	app.Get("/ws/interviews/:room", wsHandler.HandleJoin)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "HireHub API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/resumes/parse",
				"POST /api/v1/candidates/search",
				"GET /api/v1/candidates/search",
				"POST /api/v1/interviews/sessions",
				"POST /api/v1/interviews/sessions/:id/complete",
				"GET /api/v1/interviews/sessions/:id",
				"GET /ws/interviews/:room",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		signalWorker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
