// @title BloomForge API
// @version 1.0
// @description Turns uploaded course documents into Bloom's taxonomy tagged exam questions and printable exam papers.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8090
// @BasePath /api
// @schemes http https
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"bloomforge/internal/adapter/embedding"
	"bloomforge/internal/adapter/extractor"
	"bloomforge/internal/adapter/llm"
	"bloomforge/internal/adapter/ocr"
	"bloomforge/internal/adapter/quizgen"
	"bloomforge/internal/adapter/rediscache"
	"bloomforge/internal/adapter/renderer"
	"bloomforge/internal/adapter/storage"
	"bloomforge/internal/cache"
	"bloomforge/internal/config"
	"bloomforge/internal/database"
	"bloomforge/internal/domain"
	"bloomforge/internal/generator"
	"bloomforge/internal/handler"
	"bloomforge/internal/logger"
	"bloomforge/internal/middleware"
	"bloomforge/internal/repository"
	"bloomforge/internal/service"
	"bloomforge/internal/session"
	"bloomforge/internal/telemetry"

	_ "bloomforge/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// sessionStore is a SessionStore with a TTL sweeper.
type sessionStore interface {
	domain.SessionStore
	Run(ctx context.Context, interval time.Duration)
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Tracing, cfg.Env, nil, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	if err := extractor.SetOfficeLicense(os.Getenv("UNIDOC_LICENSE_API_KEY")); err != nil {
		appLogger.Warn("Failed to register office document license, DOCX and PPTX extraction will fail", zap.Error(err))
	}

	synth, err := generator.New()
	if err != nil {
		appLogger.Fatal("Question template matrix is incomplete", zap.Error(err))
	}

	// File storage
	files, err := storage.New(ctx, cfg.Storage, cfg.Upload.Dir, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize file storage", zap.Error(err))
	}
	appLogger.Info("File storage initialized", zap.String("driver", cfg.Storage.Driver))

	// Redis is only needed for shared sessions
	var sharedCache domain.Cache
	if cfg.Session.Store == "redis" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		sharedCache = rediscache.New(redisClient)
		appLogger.Info("Successfully connected to Redis")
	}
	results := service.NewResultCacheService(sharedCache, cfg.Session.TTL)

	onEvict := func(ctx context.Context, s *domain.Session) {
		if err := files.DeleteSession(ctx, s.ID); err != nil {
			appLogger.Warn("Failed to delete files of expired session", zap.String("session_id", s.ID), zap.Error(err))
		}
		if err := results.Delete(ctx, s.ID); err != nil {
			appLogger.Warn("Failed to drop cached result of expired session", zap.String("session_id", s.ID), zap.Error(err))
		}
	}

	var sessions sessionStore
	if sharedCache != nil {
		sessions = session.NewCacheStore(sharedCache, cfg.Session.TTL, onEvict, appLogger)
	} else {
		sessions = session.NewMemoryStore(cfg.Session.TTL, onEvict, appLogger)
	}
	go sessions.Run(ctx, cfg.Session.SweepInterval)
	appLogger.Info("Session store initialized",
		zap.String("store", cfg.Session.Store),
		zap.Duration("ttl", cfg.Session.TTL))

	// Extraction
	var ocrService domain.OCRService
	vision, err := ocr.New(ctx, cfg.OCR, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize OCR", zap.Error(err))
	}
	if vision != nil {
		defer vision.Close()
		ocrService = vision
	}
	contentExtractor := extractor.New(ocrService, cfg.Upload.MaxFileSize, appLogger)

	// AI generation
	genOpts := []service.GenerationOption{service.WithResultCache(results)}
	textGenerator, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		appLogger.Error("Failed to create LLM client, AI generation disabled",
			zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		textGenerator = nil
	}
	if textGenerator != nil {
		orchestratorOpts := []quizgen.Option{quizgen.WithTimeout(cfg.LLM.Timeout)}

		embedder, err := embedding.New(cfg.Embedding, cfg.LLM, sharedCache)
		if err != nil {
			appLogger.Fatal("Failed to create embedding service", zap.Error(err))
		}
		if embedder != nil {
			orchestratorOpts = append(orchestratorOpts, quizgen.WithDeduplicator(
				quizgen.NewDeduplicator(embedder, cfg.Embedding.SimilarityThreshold, appLogger)))
			appLogger.Info("Near-duplicate filtering enabled", zap.String("source", cfg.Embedding.Source))
		}

		orchestrator := quizgen.NewOrchestrator(textGenerator, synth, appLogger, orchestratorOpts...)
		genOpts = append(genOpts, service.WithAI(orchestrator))
		appLogger.Info("AI generation enabled", zap.String("model", orchestrator.Name()))
	} else {
		appLogger.Info("No LLM provider configured, using rule-based generation only")
	}

	// Question bank
	var bank domain.QuestionBankRepository
	if cfg.DB.Enabled {
		db, err := database.Connect(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		migrator, err := database.NewMigrator(db.DB, cfg.DB.Driver, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to create migrator", zap.Error(err))
		}
		if err := migrator.Up(); err != nil {
			appLogger.Fatal("Failed to run migrations", zap.Error(err))
		}
		migrator.Close()

		bank = repository.NewQuestionBankAdapter(db)
		genOpts = append(genOpts, service.WithQuestionBank(bank, repository.NewTransactionManagerAdapter(db)))
		appLogger.Info("Question bank enabled", zap.String("driver", cfg.DB.Driver))
	}

	var pdfRenderer domain.PDFRenderer
	if r := renderer.New(cfg.Renderer, appLogger); r != nil {
		pdfRenderer = r
	} else {
		appLogger.Info("No PDF renderer configured, exports fall back to HTML")
	}

	// Initialize services
	documentService := service.NewDocumentService(contentExtractor, sessions, files, cfg.Upload.MaxFiles, cfg.Session.TTL)
	generationService := service.NewGenerationService(sessions, synth, genOpts...)
	examService := service.NewExamService(sessions, generationService, bank, pdfRenderer)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept",
		ExposeHeaders: "Content-Disposition," + handler.HeaderRenderFallback + "," + handler.HeaderRenderSuggestion,
		MaxAge:        300,
	}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	handler.RegisterRoutes(app.Group("/api"), handler.Handlers{
		Documents:  handler.NewDocumentHandler(documentService),
		Generation: handler.NewGenerationHandler(generationService),
		Exam:       handler.NewExamHandler(examService),
	})

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		appLogger.Warn("Failed to flush traces", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
