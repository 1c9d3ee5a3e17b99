package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/bootstrap"
	"alfredoptarigan/resume-ranker/internal/config"
	"alfredoptarigan/resume-ranker/internal/services"
)

var reembedCmd = &cobra.Command{
	Use:   "reembed",
	Short: "Recompute embeddings for candidates and jobs stored under another model",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runReembed(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reembedCmd)
}

func runReembed(cmd *cobra.Command) error {
	ctx := cmd.Context()

	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer log.Sync()

	cfg := config.Load()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return err
	}
	repos := bootstrap.NewRepositories(db)

	embedder, err := bootstrap.NewEmbedder(ctx, cfg, log)
	if err != nil {
		return err
	}

	vectors, err := bootstrap.NewVectorStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	if bootstrap.IsMemoryIndex(cfg) {
		log.Warn("⚠️ In-memory vector index is private to this process, the API rebuilds its own at start")
	}

	profiles := services.NewProfileService(services.ProfileDeps{
		DocumentRepo:  repos.Documents,
		CandidateRepo: repos.Candidates,
		JobRepo:       repos.Jobs,
		Embedder:      embedder,
		Vectors:       vectors,
		Logger:        log,
	})

	log.Info("🔄 Re-embedding stale profiles", zap.String("model", embedder.Model()))

	report, err := profiles.ReembedStale(ctx)
	if err != nil {
		return fmt.Errorf("failed to re-embed profiles: %w", err)
	}

	pretty, _ := json.MarshalIndent(report, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(pretty))

	if report.Failed > 0 {
		return fmt.Errorf("%d profiles failed to re-embed", report.Failed)
	}
	return nil
}
