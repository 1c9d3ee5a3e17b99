package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/bootstrap"
	"alfredoptarigan/resume-ranker/internal/config"
	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/services"
)

const defaultResumeDir = "./resumes"

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Options{JSON: cfg.Log.JSON, Debug: cfg.Log.Debug, Service: "ingest"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dir := defaultResumeDir
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	log.Info("🚀 Starting resume ingestion...", zap.String("dir", dir))

	ctx := context.Background()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize database", zap.Error(err))
	}
	repos := bootstrap.NewRepositories(db)

	embedder, err := bootstrap.NewEmbedder(ctx, cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize embedding provider", zap.Error(err))
	}

	vectors, err := bootstrap.NewVectorStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize vector store", zap.Error(err))
	}

	if bootstrap.IsMemoryIndex(cfg) {
		log.Warn("⚠️ In-memory vector index is private to this process, the API rebuilds its own at start")
	}

	profiles := services.NewProfileService(services.ProfileDeps{
		DocumentRepo:  repos.Documents,
		CandidateRepo: repos.Candidates,
		JobRepo:       repos.Jobs,
		Parser:        services.NewResumeParser(nil),
		Embedder:      embedder,
		Vectors:       vectors,
		Logger:        log,
	})

	files, err := resumeFiles(dir)
	if err != nil {
		log.Fatal("❌ Failed to list resumes", zap.Error(err))
	}
	if len(files) == 0 {
		log.Warn("⚠️  No resumes found", zap.String("dir", dir))
		return
	}

	successCount := 0
	failCount := 0

	for i, path := range files {
		name := filepath.Base(path)
		log.Info("📄 Processing", zap.String("file", name), zap.Int("n", i+1), zap.Int("total", len(files)))

		data, err := os.ReadFile(path)
		if err != nil {
			log.Error("❌ Failed to read file", zap.String("file", name), zap.Error(err))
			failCount++
			continue
		}

		candidate, err := profiles.IngestResume(ctx, name, data, nil)
		if err != nil {
			log.Error("❌ Failed to ingest resume", zap.String("file", name), zap.Error(err))
			failCount++
			continue
		}

		log.Info("✅ Ingested",
			zap.String("file", name),
			zap.String("candidate_id", candidate.ID.String()),
			zap.String("name", candidate.Name),
			zap.Int("skills", len(candidate.Skills)),
		)
		successCount++
	}

	log.Info("📊 Ingestion summary", zap.Int("successful", successCount), zap.Int("failed", failCount))

	if failCount > 0 {
		log.Warn("⚠️  Some resumes failed to ingest. Please check the logs above.")
		os.Exit(1)
	}

	log.Info("✅ All resumes ingested successfully!")
}

// resumeFiles lists the supported files directly under dir in name order.
func resumeFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := services.ValidateExtension(e.Name()); err != nil {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
