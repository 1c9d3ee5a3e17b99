// Package bootstrap builds the shared service graph from configuration for
// the API server, the CLI and the ingest script.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"alfredoptarigan/resume-ranker/internal/config"
	"alfredoptarigan/resume-ranker/internal/repositories"
	"alfredoptarigan/resume-ranker/internal/services"
)

type Repositories struct {
	Documents  repositories.DocumentRepository
	Candidates repositories.CandidateRepository
	Jobs       repositories.JobRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Documents:  repositories.NewDocumentRepository(db),
		Candidates: repositories.NewCandidateRepository(db),
		Jobs:       repositories.NewJobRepository(db),
	}
}

// NewEmbedder returns the Gemini provider wrapped for chunked embedding.
func NewEmbedder(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.EmbeddingProvider, error) {
	base, err := services.NewGeminiEmbedder(ctx, services.GeminiEmbedderConfig{
		APIKey:       cfg.Gemini.APIKey,
		Model:        cfg.Gemini.EmbedModel,
		Dimension:    cfg.Gemini.Dimension,
		MaxAttempts:  cfg.Worker.RetryMaxAttempts,
		InitialDelay: cfg.Worker.RetryInitialDelay,
	}, log)
	if err != nil {
		return nil, err
	}

	return services.NewChunkedEmbedder(
		base,
		services.NewTextChunker(),
		cfg.Worker.ChunkSize,
		cfg.Worker.ChunkOverlap,
		cfg.Worker.Concurrency,
	), nil
}

// NewVectorStore builds and initialises the configured vector index.
func NewVectorStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.VectorStore, error) {
	store, err := services.NewVectorStore(services.VectorStoreConfig{
		Driver:       cfg.VectorStore.Driver,
		QdrantURL:    cfg.Qdrant.URL,
		QdrantAPIKey: cfg.Qdrant.APIKey,
		Collection:   cfg.Qdrant.Collection,
		Dimension:    cfg.Gemini.Dimension,
	}, log)
	if err != nil {
		return nil, err
	}

	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}
	return store, nil
}

// LoadVectorIndex fills an in-process index from the embeddings stored in
// Postgres. Persistent drivers keep their own data and are left untouched.
func LoadVectorIndex(ctx context.Context, cfg *config.Config, repos Repositories, store services.VectorStore, log *zap.Logger) (int, error) {
	if !IsMemoryIndex(cfg) {
		return 0, nil
	}

	candidates, err := repos.Candidates.FindEmbedded()
	if err != nil {
		return 0, fmt.Errorf("failed to load candidate embeddings: %w", err)
	}

	loaded := 0
	for _, c := range candidates {
		if err := store.Upsert(ctx, c.ID.String(), services.KindCandidate, c.Embedding, map[string]string{"name": c.Name}); err != nil {
			return loaded, fmt.Errorf("failed to index candidate %s: %w", c.ID, err)
		}
		loaded++
	}

	jobs, err := repos.Jobs.FindAll()
	if err != nil {
		return loaded, fmt.Errorf("failed to load job embeddings: %w", err)
	}

	for _, j := range jobs {
		if !j.HasEmbedding() {
			continue
		}
		if err := store.Upsert(ctx, j.ID.String(), services.KindJob, j.Embedding, map[string]string{"name": j.Title}); err != nil {
			return loaded, fmt.Errorf("failed to index job %s: %w", j.ID, err)
		}
		loaded++
	}

	log.Info("✅ Vector index loaded from database", zap.Int("vectors", loaded))
	return loaded, nil
}

// IsMemoryIndex reports whether the configured index lives only in this process.
func IsMemoryIndex(cfg *config.Config) bool {
	switch cfg.VectorStore.Driver {
	case "memory", "chromem":
		return true
	}
	return false
}

// NewStorage builds and initialises the configured file storage.
func NewStorage(ctx context.Context, cfg *config.Config) (services.StorageService, error) {
	var (
		storage services.StorageService
		err     error
	)

	switch cfg.Storage.Driver {
	case "", "local":
		storage = services.NewLocalStorage(cfg.Storage.UploadPath)
	case "s3", "r2":
		storage, err = services.NewS3Storage(ctx, services.S3StorageConfig{
			Bucket:    cfg.Storage.S3.Bucket,
			Region:    cfg.Storage.S3.Region,
			Endpoint:  cfg.Storage.S3.Endpoint,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}

	if err := storage.Init(ctx); err != nil {
		return nil, err
	}
	return storage, nil
}

// NewNotifier connects to RabbitMQ when a URL is configured.
func NewNotifier(cfg *config.Config, log *zap.Logger) (services.Notifier, error) {
	if cfg.Broker.URL == "" {
		log.Info("ℹ️ No RABBITMQ_URL set, document events are not published")
		return services.NewNoopNotifier(), nil
	}
	return services.NewRabbitNotifier(cfg.Broker.URL, cfg.Broker.Exchange, log)
}

func NewRankingService(cfg *config.Config, repos Repositories, embedder services.EmbeddingProvider, vectors services.VectorStore, log *zap.Logger) services.RankingService {
	return services.NewRankingService(
		repos.Candidates,
		repos.Jobs,
		embedder,
		vectors,
		services.RankingOptions{
			SkillThreshold: cfg.Ranking.SkillThreshold,
			SemanticSkills: cfg.Ranking.SemanticSkills,
			ShortlistLimit: cfg.Ranking.ShortlistLimit,
			Concurrency:    cfg.Worker.Concurrency,
		},
		log,
	)
}
