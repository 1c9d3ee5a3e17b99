package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/bootstrap"
	"alfredoptarigan/resume-ranker/internal/config"
	"alfredoptarigan/resume-ranker/internal/handlers"
	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(logger.Options{
		JSON:    cfg.Log.JSON,
		Debug:   cfg.Log.Debug || cfg.IsDevelopment(),
		Service: "api",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize database", zap.Error(err))
	}

	repos := bootstrap.NewRepositories(db)
	log.Info("✅ Repositories initialized successfully")

	storage, err := bootstrap.NewStorage(ctx, cfg)
	if err != nil {
		log.Fatal("❌ Failed to initialize storage", zap.Error(err))
	}
	log.Info("✅ Storage initialized", zap.String("driver", cfg.Storage.Driver))

	embedder, err := bootstrap.NewEmbedder(ctx, cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize embedding provider", zap.Error(err))
	}
	log.Info("✅ Embedding provider initialized", zap.String("model", embedder.Model()))

	vectors, err := bootstrap.NewVectorStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize vector store", zap.Error(err))
	}
	log.Info("✅ Vector store initialized", zap.String("driver", cfg.VectorStore.Driver))

	if _, err := bootstrap.LoadVectorIndex(ctx, cfg, repos, vectors, log); err != nil {
		log.Fatal("❌ Failed to load vector index", zap.Error(err))
	}

	notifier, err := bootstrap.NewNotifier(cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize notifier", zap.Error(err))
	}
	defer notifier.Close()

	profiles := services.NewProfileService(services.ProfileDeps{
		DocumentRepo:  repos.Documents,
		CandidateRepo: repos.Candidates,
		JobRepo:       repos.Jobs,
		Storage:       storage,
		Parser:        services.NewResumeParser(nil),
		Embedder:      embedder,
		Vectors:       vectors,
		Notifier:      notifier,
		Logger:        log,
	})
	rankingService := bootstrap.NewRankingService(cfg, repos, embedder, vectors, log)
	log.Info("✅ Services initialized successfully")

	worker := services.NewWorker(
		repos.Documents,
		profiles,
		cfg.Worker.Concurrency,
		cfg.Worker.PollInterval,
		log,
	)
	worker.Start(ctx)

	// Initialize Handlers
	h := &handlers.Handlers{
		Upload:    handlers.NewUploadHandler(repos.Documents, storage, worker, cfg.Storage.MaxFileSize, log),
		Document:  handlers.NewDocumentHandler(repos.Documents),
		Candidate: handlers.NewCandidateHandler(repos.Candidates, profiles),
		Job:       handlers.NewJobHandler(repos.Jobs, profiles),
		Ranking:   handlers.NewRankingHandler(rankingService),
	}
	log.Info("✅ Handlers initialized")

	app := fiber.New(fiber.Config{
		AppName:      "Resume Ranker API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		// room for multipart overhead on a max-size file
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	h.Register(api)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Ranker API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/upload",
				"GET /api/v1/documents/:id",
				"GET /api/v1/candidates",
				"GET|PUT|DELETE /api/v1/candidates/:id",
				"POST /api/v1/jobs",
				"GET /api/v1/jobs",
				"GET /api/v1/jobs/:id",
				"GET /api/v1/jobs/:id/ranking",
				"GET /api/v1/jobs/:id/shortlist",
				"POST /api/v1/rank",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("🛑 Shutting down server...")
		worker.Stop()
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("❌ Failed to start server", zap.Error(err))
	}
}
