package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/config"
	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/repositories"
	"alfredoptarigan/resume-ranker/internal/services"
)

func TestNewStorage_LocalCreatesUploadDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	cfg := &config.Config{Storage: config.StorageConfig{Driver: "local", UploadPath: dir}}

	storage, err := NewStorage(context.Background(), cfg)

	require.NoError(t, err)
	assert.NotNil(t, storage)
	assert.DirExists(t, dir)
}

func TestNewStorage_UnknownDriver(t *testing.T) {
	_, err := NewStorage(context.Background(), &config.Config{Storage: config.StorageConfig{Driver: "ftp"}})
	assert.Error(t, err)
}

func TestNewVectorStore_Memory(t *testing.T) {
	cfg := &config.Config{
		VectorStore: config.VectorStoreConfig{Driver: "memory"},
		Qdrant:      config.QdrantConfig{Collection: "candidate_profiles"},
	}

	store, err := NewVectorStore(context.Background(), cfg, zap.NewNop())

	require.NoError(t, err)
	results, err := store.Search(context.Background(), []float32{1, 0}, services.KindCandidate, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNewNotifier_NoBrokerIsNoop(t *testing.T) {
	n, err := NewNotifier(&config.Config{}, zap.NewNop())

	require.NoError(t, err)
	assert.NoError(t, n.Publish(context.Background(), services.DocumentEvent{Status: "completed"}))
	assert.NoError(t, n.Close())
}

func TestNewEmbedder_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbedder(context.Background(), &config.Config{}, zap.NewNop())
	assert.Error(t, err)
}

type storedCandidates struct {
	repositories.CandidateRepository
	embedded []models.Candidate
}

func (r *storedCandidates) FindEmbedded() ([]models.Candidate, error) {
	return r.embedded, nil
}

func (r *storedCandidates) FindByIDs(ids []uuid.UUID) ([]models.Candidate, error) {
	var out []models.Candidate
	for _, id := range ids {
		for _, c := range r.embedded {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

type storedJobs struct {
	repositories.JobRepository
	jobs []models.JobDescription
}

func (r *storedJobs) FindAll() ([]models.JobDescription, error) {
	return r.jobs, nil
}

func TestLoadVectorIndex_MemoryDriverRestoresShortlist(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		VectorStore: config.VectorStoreConfig{Driver: "memory"},
		Qdrant:      config.QdrantConfig{Collection: "restart_test"},
	}
	store, err := NewVectorStore(ctx, cfg, zap.NewNop())
	require.NoError(t, err)

	alice := models.Candidate{ID: uuid.New(), Name: "Alice", Embedding: []float32{1, 0}}
	bob := models.Candidate{ID: uuid.New(), Name: "Bob", Embedding: []float32{0, 1}}
	job := models.JobDescription{ID: uuid.New(), Title: "Go Developer", Embedding: []float32{1, 0.1}}
	draft := models.JobDescription{ID: uuid.New(), Title: "Draft"}

	repos := Repositories{
		Candidates: &storedCandidates{embedded: []models.Candidate{alice, bob}},
		Jobs:       &storedJobs{jobs: []models.JobDescription{job, draft}},
	}

	loaded, err := LoadVectorIndex(ctx, cfg, repos, store, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 3, loaded)

	jobs := &storedJobs{jobs: []models.JobDescription{job}}
	ranking := services.NewRankingService(repos.Candidates, jobByID{jobs}, nil, store, services.RankingOptions{}, zap.NewNop())

	shortlist, err := ranking.Shortlist(ctx, job.ID, 2)
	require.NoError(t, err)
	require.Len(t, shortlist.Candidates, 2)
	assert.Equal(t, alice.ID.String(), shortlist.Candidates[0].CandidateID)
	assert.Equal(t, "Alice", shortlist.Candidates[0].Name)
}

func TestLoadVectorIndex_SkipsPersistentDriver(t *testing.T) {
	cfg := &config.Config{VectorStore: config.VectorStoreConfig{Driver: "qdrant"}}

	// repositories are never touched, so nil interfaces are fine here
	loaded, err := LoadVectorIndex(context.Background(), cfg, Repositories{}, nil, zap.NewNop())

	require.NoError(t, err)
	assert.Zero(t, loaded)
}

type jobByID struct {
	*storedJobs
}

func (r jobByID) FindByID(id uuid.UUID) (*models.JobDescription, error) {
	for i := range r.jobs {
		if r.jobs[i].ID == id {
			return &r.jobs[i], nil
		}
	}
	return nil, repositories.ErrNotFound
}
