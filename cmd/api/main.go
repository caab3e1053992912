package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/mock-interviewer/internal/config"
	"alfredoptarigan/mock-interviewer/internal/handlers"
	"alfredoptarigan/mock-interviewer/internal/repositories"
	"alfredoptarigan/mock-interviewer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Println("✅ Config loaded successfully")

	// Initialize session store
	sessionRepo, err := newSessionRepository(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize session store: %v", err)
	}
	log.Printf("✅ Session store initialized (%s)\n", cfg.Storage.Driver)

	// Initialize services
	storageService := services.NewStorageService(
		filepath.Join(cfg.Storage.DataPath, repositories.DirResumes),
		cfg.Storage.MaxFileSize,
	)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}
	resumeParser := services.NewResumeParser()

	// Initialize LLM provider
	var geminiService services.GeminiService
	if cfg.LLM.GeminiAPIKey != "" {
		geminiService, err = services.NewGeminiService(
			cfg.LLM.GeminiAPIKey,
			cfg.LLM.GeminiModel,
			cfg.LLM.RetryMaxAttempts,
			cfg.LLM.Timeout,
		)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
		}
	}

	var llm services.LLMTask
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		llm = services.NewOpenAIService(
			cfg.LLM.OpenAIAPIKey,
			cfg.LLM.OpenAIBaseURL,
			cfg.LLM.OpenAIModel,
			cfg.LLM.RetryMaxAttempts,
			cfg.LLM.Timeout,
		)
	default:
		llm = geminiService
	}
	log.Printf("✅ LLM provider initialized (%s)\n", cfg.LLM.Provider)

	// Company research only feeds question generation
	questionLLM := llm
	if cfg.Research.SerperAPIKey != "" {
		questionLLM = services.NewToolAugmentedTask(
			llm,
			services.NewSerperSearchTool(cfg.Research.SerperAPIKey, cfg.Research.SerperURL),
			services.NewPageScrapeTool(),
		)
		log.Println("✅ Research tools enabled")
	}

	// Initialize question bank and indexing worker
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		questionBank services.QuestionBank
		embedder     services.Embedder
		worker       services.Worker
	)
	if cfg.QuestionBankEnabled() {
		questionBank, err = services.NewQdrantQuestionBank(
			cfg.Qdrant.URL,
			cfg.Qdrant.APIKey,
			cfg.Qdrant.Collection,
		)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
		}
		if err := questionBank.InitCollection(ctx); err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
		}
		embedder = geminiService

		worker = services.NewWorker(sessionRepo, questionBank, embedder, cfg.Worker.Concurrency)
		worker.Start(ctx)
		log.Println("✅ Question bank and worker started")
	} else {
		log.Println("⚠️  QDRANT_URL or GEMINI_API_KEY not set, question bank disabled")
	}

	interviewService := services.NewInterviewService(
		sessionRepo,
		storageService,
		resumeParser,
		services.NewQuestionGenerator(questionLLM, questionBank, embedder, cfg.LLM.Temperature),
		services.NewDialogueResponder(llm, cfg.LLM.Temperature),
		services.NewFeedbackScorer(llm),
		worker,
	)
	log.Println("✅ Services initialized successfully")

	// Initialize Handlers
	interviewHandler := handlers.NewInterviewHandler(interviewService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AI Mock Interviewer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + 30*time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	interviewHandler.RegisterRoutes(app)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "AI Mock Interviewer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /store_user_info",
				"GET /create_interviewer?userSessionId=",
				"POST /process",
				"POST /store_interview",
				"GET /get_feedback?userSessionId=",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if worker != nil {
			worker.Stop()
		}
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

func newSessionRepository(cfg *config.Config) (repositories.SessionRepository, error) {
	if cfg.Storage.Driver == config.DriverPostgres {
		db, err := config.InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		return repositories.NewSessionRepository(db), nil
	}

	return repositories.NewFileSessionRepository(cfg.Storage.DataPath)
}
