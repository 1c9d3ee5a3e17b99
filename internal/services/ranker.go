package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/ranking"
	"alfredoptarigan/resume-ranker/internal/repositories"
)

// ErrNotEmbedded means the job has no vector yet, e.g. after a failed
// embedding call or a model switch.
var ErrNotEmbedded = errors.New("job description has no embedding")

const noCandidatesMessage = "no candidates available for ranking"

type RankingService interface {
	RankJob(ctx context.Context, jobID uuid.UUID) (*models.RankingResponse, error)
	Shortlist(ctx context.Context, jobID uuid.UUID, limit int) (*models.ShortlistResponse, error)
	RankVectors(req models.RankVectorsRequest) (*models.RankVectorsResponse, error)
}

type RankingOptions struct {
	SkillThreshold float64
	SemanticSkills bool
	ShortlistLimit int
	Concurrency    int
}

type rankingService struct {
	candidateRepo repositories.CandidateRepository
	jobRepo       repositories.JobRepository
	embedder      EmbeddingProvider
	vectors       VectorStore
	opts          RankingOptions
	log           *zap.Logger
}

func NewRankingService(
	candidateRepo repositories.CandidateRepository,
	jobRepo repositories.JobRepository,
	embedder EmbeddingProvider,
	vectors VectorStore,
	opts RankingOptions,
	log *zap.Logger,
) RankingService {
	if opts.SkillThreshold <= 0 {
		opts.SkillThreshold = ranking.DefaultSkillThreshold
	}
	if opts.ShortlistLimit <= 0 {
		opts.ShortlistLimit = 10
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	return &rankingService{
		candidateRepo: candidateRepo,
		jobRepo:       jobRepo,
		embedder:      embedder,
		vectors:       vectors,
		opts:          opts,
		log:           log,
	}
}

// RankJob ranks every embedded candidate against the job. Order comes from
// cosine similarity alone; skill and experience scores are annotations.
func (r *rankingService) RankJob(ctx context.Context, jobID uuid.UUID) (*models.RankingResponse, error) {
	start := time.Now()
	defer func() { RankingDuration.Observe(time.Since(start).Seconds()) }()

	job, err := r.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, err
	}
	if !job.HasEmbedding() {
		return nil, fmt.Errorf("job %s: %w", jobID, ErrNotEmbedded)
	}

	candidates, err := r.candidateRepo.FindEmbedded()
	if err != nil {
		return nil, err
	}

	resp := &models.RankingResponse{
		JobID:      job.ID.String(),
		JobTitle:   job.Title,
		Candidates: []models.RankedCandidate{},
	}

	inputs := make([]ranking.Candidate, len(candidates))
	byID := make(map[string]*models.Candidate, len(candidates))
	for i := range candidates {
		id := candidates[i].ID.String()
		inputs[i] = ranking.Candidate{ID: id, Embedding: candidates[i].Embedding}
		byID[id] = &candidates[i]
	}

	scores, err := ranking.Rank(job.Embedding, inputs)
	if err != nil {
		r.countRankingError(err)
		if errors.Is(err, ranking.ErrEmptyInput) {
			resp.Message = noCandidatesMessage
			return resp, nil
		}
		return nil, fmt.Errorf("failed to rank candidates for job %s: %w", jobID, err)
	}
	RankedCandidates.Observe(float64(len(scores)))

	sim := r.skillSimilarity(ctx, job, candidates)

	for i, s := range scores {
		c := byID[s.CandidateID]
		skillScore := ranking.SkillMatchScore(c.Skills, job.RequiredSkills, sim, r.opts.SkillThreshold)
		expScore := ranking.ExperienceScore(c.ExperienceYears, job.MinExperience)

		resp.Candidates = append(resp.Candidates, models.RankedCandidate{
			Rank:            i + 1,
			CandidateID:     s.CandidateID,
			Name:            c.Name,
			Score:           s.Score,
			SkillScore:      skillScore,
			ExperienceScore: expScore,
			CompositeScore:  ranking.CompositeScore(skillScore, expScore),
			MatchedSkills:   ranking.MatchedSkills(c.Skills, job.RequiredSkills, sim, r.opts.SkillThreshold),
		})
	}

	r.log.Info("📊 Ranking computed",
		zap.String("job_id", resp.JobID),
		zap.Int("candidates", len(resp.Candidates)),
		zap.Duration("took", time.Since(start)),
	)
	return resp, nil
}

// Shortlist asks the vector index for the nearest candidates. It is an
// approximation; RankJob is authoritative. Hits are resolved against the
// database, so entries for deleted candidates are dropped.
func (r *rankingService) Shortlist(ctx context.Context, jobID uuid.UUID, limit int) (*models.ShortlistResponse, error) {
	if limit <= 0 {
		limit = r.opts.ShortlistLimit
	}

	job, err := r.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, err
	}
	if !job.HasEmbedding() {
		return nil, fmt.Errorf("job %s: %w", jobID, ErrNotEmbedded)
	}

	results, err := r.vectors.Search(ctx, job.Embedding, KindCandidate, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search vector index: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(results))
	for _, res := range results {
		if id, err := uuid.Parse(res.ID); err == nil {
			ids = append(ids, id)
		}
	}

	stored, err := r.candidateRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(stored))
	for _, c := range stored {
		names[c.ID.String()] = c.Name
	}

	resp := &models.ShortlistResponse{
		JobID:      job.ID.String(),
		Candidates: make([]models.ShortlistEntry, 0, len(results)),
	}
	for _, res := range results {
		name, ok := names[res.ID]
		if !ok {
			r.log.Debug("⏭️ Skipping stale index entry", zap.String("candidate_id", res.ID))
			continue
		}
		resp.Candidates = append(resp.Candidates, models.ShortlistEntry{
			CandidateID: res.ID,
			Name:        name,
			Score:       res.Score,
		})
	}
	return resp, nil
}

// RankVectors ranks caller-supplied embeddings without touching storage.
func (r *rankingService) RankVectors(req models.RankVectorsRequest) (*models.RankVectorsResponse, error) {
	start := time.Now()
	defer func() { RankingDuration.Observe(time.Since(start).Seconds()) }()

	inputs := make([]ranking.Candidate, len(req.Candidates))
	for i, c := range req.Candidates {
		inputs[i] = ranking.Candidate{ID: c.ID, Embedding: c.Embedding}
	}

	scores, err := ranking.Rank(req.JobEmbedding, inputs)
	if err != nil {
		r.countRankingError(err)
		return nil, err
	}

	RankedCandidates.Observe(float64(len(scores)))
	return &models.RankVectorsResponse{Ranking: scores}, nil
}

func (r *rankingService) countRankingError(err error) {
	switch {
	case errors.Is(err, ranking.ErrEmptyInput):
		RankingErrors.WithLabelValues("empty_input").Inc()
	case errors.Is(err, ranking.ErrDimensionMismatch):
		RankingErrors.WithLabelValues("dimension_mismatch").Inc()
	}
}

// skillSimilarity returns exact matching unless semantic matching is on, in
// which case every distinct skill is embedded once and compared by cosine.
// Any embedding failure falls back to exact matching.
func (r *rankingService) skillSimilarity(ctx context.Context, job *models.JobDescription, candidates []models.Candidate) ranking.SkillSimilarity {
	if !r.opts.SemanticSkills || len(job.RequiredSkills) == 0 {
		return ranking.ExactSkillSimilarity
	}

	distinct := make(map[string]struct{})
	for _, s := range job.RequiredSkills {
		distinct[ranking.NormalizeSkill(s)] = struct{}{}
	}
	for _, c := range candidates {
		for _, s := range c.Skills {
			distinct[ranking.NormalizeSkill(s)] = struct{}{}
		}
	}

	var mu sync.Mutex
	vectors := make(map[string][]float32, len(distinct))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for skill := range distinct {
		if skill == "" {
			continue
		}
		g.Go(func() error {
			v, err := r.embedder.Embed(gctx, skill)
			if err != nil {
				return fmt.Errorf("failed to embed skill %q: %w", skill, err)
			}
			mu.Lock()
			vectors[skill] = v
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.log.Warn("⚠️ Semantic skill matching unavailable, using exact matching", zap.Error(err))
		return ranking.ExactSkillSimilarity
	}

	return func(a, b string) float64 {
		if a == b {
			return 1
		}
		va, okA := vectors[a]
		vb, okB := vectors[b]
		if !okA || !okB {
			return 0
		}
		return ranking.CosineSimilarity(va, vb)
	}
}
