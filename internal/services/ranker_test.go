package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/ranking"
	"alfredoptarigan/resume-ranker/internal/repositories"
)

type rankerFixture struct {
	candidates *fakeCandidateRepo
	jobs       *fakeJobRepo
	embedder   *stubEmbedder
	vectors    VectorStore
	service    RankingService
}

func newRankerFixture(t *testing.T, opts RankingOptions) *rankerFixture {
	t.Helper()
	f := &rankerFixture{
		candidates: &fakeCandidateRepo{},
		jobs:       &fakeJobRepo{},
		embedder:   &stubEmbedder{vectors: map[string][]float32{}},
		vectors:    NewChromemStore("ranker_test", zap.NewNop()),
	}
	f.service = NewRankingService(f.candidates, f.jobs, f.embedder, f.vectors, opts, zap.NewNop())
	return f
}

func (f *rankerFixture) addCandidate(t *testing.T, c *models.Candidate) {
	t.Helper()
	require.NoError(t, f.candidates.Create(c))
	require.NoError(t, f.vectors.Upsert(context.Background(), c.ID.String(), KindCandidate, c.Embedding, map[string]string{"name": c.Name}))
}

func TestRankJob_OrdersByCosineAndAnnotates(t *testing.T) {
	f := newRankerFixture(t, RankingOptions{})

	job := embeddedJob("Backend Engineer", []float32{1, 0}, []string{"go", "sql"}, 4)
	require.NoError(t, f.jobs.Create(job))

	a := embeddedCandidate("A", []float32{1, 0}, []string{"Go", "SQL"}, 6)
	b := embeddedCandidate("B", []float32{0, 1}, []string{"java"}, 2)
	c := embeddedCandidate("C", []float32{0.5, 0.5}, []string{"go"}, 4)
	for _, cand := range []*models.Candidate{a, b, c} {
		f.addCandidate(t, cand)
	}

	resp, err := f.service.RankJob(context.Background(), job.ID)
	require.NoError(t, err)

	require.Len(t, resp.Candidates, 3)
	assert.Equal(t, job.ID.String(), resp.JobID)
	assert.Equal(t, "Backend Engineer", resp.JobTitle)
	assert.Empty(t, resp.Message)

	first, second, third := resp.Candidates[0], resp.Candidates[1], resp.Candidates[2]
	assert.Equal(t, []string{a.ID.String(), c.ID.String(), b.ID.String()},
		[]string{first.CandidateID, second.CandidateID, third.CandidateID})
	assert.Equal(t, []int{1, 2, 3}, []int{first.Rank, second.Rank, third.Rank})

	assert.InDelta(t, 1.0, first.Score, 1e-9)
	assert.InDelta(t, 0.7071067811865475, second.Score, 1e-6)
	assert.InDelta(t, 0.0, third.Score, 1e-9)

	assert.Equal(t, 1.0, first.SkillScore)
	assert.InDelta(t, 1.25, first.ExperienceScore, 1e-9)
	assert.InDelta(t, 0.7*1.0+0.3*1.25, first.CompositeScore, 1e-9)
	assert.Len(t, first.MatchedSkills, 2)

	assert.Equal(t, 0.5, second.SkillScore)
	assert.Equal(t, 0.0, third.SkillScore)
	assert.InDelta(t, 0.5, third.ExperienceScore, 1e-9)
}

func TestRankJob_NoCandidatesReturnsEmptyState(t *testing.T) {
	f := newRankerFixture(t, RankingOptions{})
	job := embeddedJob("Data Engineer", []float32{1, 0, 0}, nil, 0)
	require.NoError(t, f.jobs.Create(job))

	resp, err := f.service.RankJob(context.Background(), job.ID)

	require.NoError(t, err)
	assert.Empty(t, resp.Candidates)
	assert.NotNil(t, resp.Candidates)
	assert.Equal(t, noCandidatesMessage, resp.Message)
}

func TestRankJob_DimensionMismatch(t *testing.T) {
	f := newRankerFixture(t, RankingOptions{})
	job := embeddedJob("ML Engineer", make384(), nil, 0)
	require.NoError(t, f.jobs.Create(job))
	require.NoError(t, f.candidates.Create(embeddedCandidate("Old", make([]float32, 300), nil, 1)))

	_, err := f.service.RankJob(context.Background(), job.ID)

	require.Error(t, err)
	assert.ErrorIs(t, err, ranking.ErrDimensionMismatch)

	var dm *ranking.DimensionMismatchError
	require.True(t, errors.As(err, &dm))
	assert.Equal(t, 384, dm.Expected)
	assert.Equal(t, 300, dm.Got)
}

func TestRankJob_UnknownAndUnembeddedJobs(t *testing.T) {
	f := newRankerFixture(t, RankingOptions{})

	_, err := f.service.RankJob(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	job := embeddedJob("Pending", nil, nil, 0)
	job.EmbeddingModel = ""
	require.NoError(t, f.jobs.Create(job))

	_, err = f.service.RankJob(context.Background(), job.ID)
	assert.ErrorIs(t, err, ErrNotEmbedded)
}

func TestRankJob_SemanticSkillMatching(t *testing.T) {
	f := newRankerFixture(t, RankingOptions{SemanticSkills: true})
	f.embedder.vectors["go"] = []float32{1, 0}
	f.embedder.vectors["golang"] = []float32{0.95, 0.05}
	f.embedder.vectors["cobol"] = []float32{0, 1}

	job := embeddedJob("Gopher", []float32{1, 0}, []string{"go"}, 0)
	require.NoError(t, f.jobs.Create(job))
	f.addCandidate(t, embeddedCandidate("Semantic", []float32{1, 0}, []string{"golang"}, 1))
	f.addCandidate(t, embeddedCandidate("Unrelated", []float32{0, 1}, []string{"cobol"}, 1))

	resp, err := f.service.RankJob(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, resp.Candidates, 2)

	assert.Greater(t, resp.Candidates[0].SkillScore, 0.99)
	require.Len(t, resp.Candidates[0].MatchedSkills, 1)
	assert.Equal(t, "golang", resp.Candidates[0].MatchedSkills[0].Candidate)
	assert.Equal(t, 0.0, resp.Candidates[1].SkillScore)
}

func TestRankJob_SemanticFallsBackToExactOnEmbeddingError(t *testing.T) {
	f := newRankerFixture(t, RankingOptions{SemanticSkills: true})
	f.embedder.err = errors.New("provider down")

	job := embeddedJob("Gopher", []float32{1, 0}, []string{"go"}, 0)
	require.NoError(t, f.jobs.Create(job))
	require.NoError(t, f.candidates.Create(embeddedCandidate("Exact", []float32{1, 0}, []string{"Go"}, 1)))

	resp, err := f.service.RankJob(context.Background(), job.ID)

	require.NoError(t, err)
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, 1.0, resp.Candidates[0].SkillScore)
}

func TestShortlist_UsesVectorIndex(t *testing.T) {
	f := newRankerFixture(t, RankingOptions{ShortlistLimit: 2})

	job := embeddedJob("Backend", []float32{1, 0}, nil, 0)
	require.NoError(t, f.jobs.Create(job))
	a := embeddedCandidate("A", []float32{1, 0}, nil, 0)
	b := embeddedCandidate("B", []float32{0, 1}, nil, 0)
	c := embeddedCandidate("C", []float32{0.6, 0.8}, nil, 0)
	for _, cand := range []*models.Candidate{a, b, c} {
		f.addCandidate(t, cand)
	}

	resp, err := f.service.Shortlist(context.Background(), job.ID, 0)

	require.NoError(t, err)
	require.Len(t, resp.Candidates, 2)
	assert.Equal(t, a.ID.String(), resp.Candidates[0].CandidateID)
	assert.Equal(t, "A", resp.Candidates[0].Name)
	assert.Equal(t, c.ID.String(), resp.Candidates[1].CandidateID)
}

func TestShortlist_DropsCandidatesMissingFromDatabase(t *testing.T) {
	f := newRankerFixture(t, RankingOptions{})

	job := embeddedJob("Backend", []float32{1, 0}, nil, 0)
	require.NoError(t, f.jobs.Create(job))
	kept := embeddedCandidate("Kept", []float32{0.8, 0.6}, nil, 0)
	f.addCandidate(t, kept)

	// indexed but never stored, like a row deleted while the index was down
	ghost := embeddedCandidate("Ghost", []float32{1, 0}, nil, 0)
	require.NoError(t, f.vectors.Upsert(context.Background(), ghost.ID.String(), KindCandidate, ghost.Embedding, map[string]string{"name": "Ghost"}))

	resp, err := f.service.Shortlist(context.Background(), job.ID, 5)

	require.NoError(t, err)
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, kept.ID.String(), resp.Candidates[0].CandidateID)
	assert.Equal(t, "Kept", resp.Candidates[0].Name)
}

func TestRankVectors(t *testing.T) {
	f := newRankerFixture(t, RankingOptions{})

	resp, err := f.service.RankVectors(models.RankVectorsRequest{
		JobEmbedding: []float32{1, 0},
		Candidates: []models.VectorCandidate{
			{ID: "A", Embedding: []float32{1, 0}},
			{ID: "B", Embedding: []float32{0, 1}},
			{ID: "C", Embedding: []float32{0.5, 0.5}},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Ranking, 3)
	assert.Equal(t, "A", resp.Ranking[0].CandidateID)
	assert.Equal(t, "C", resp.Ranking[1].CandidateID)
	assert.Equal(t, "B", resp.Ranking[2].CandidateID)

	_, err = f.service.RankVectors(models.RankVectorsRequest{JobEmbedding: []float32{1}})
	assert.ErrorIs(t, err, ranking.ErrEmptyInput)

	_, err = f.service.RankVectors(models.RankVectorsRequest{
		JobEmbedding: []float32{1, 0},
		Candidates:   []models.VectorCandidate{{ID: "short", Embedding: []float32{1}}},
	})
	assert.ErrorIs(t, err, ranking.ErrDimensionMismatch)
}

func make384() []float32 {
	v := make([]float32, 384)
	v[0] = 1
	return v
}
