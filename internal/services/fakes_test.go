package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/repositories"
)

type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*models.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[uuid.UUID]*models.Document)}
}

func (r *fakeDocumentRepo) Create(doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDocumentRepo) FindByID(id uuid.UUID) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, repositories.ErrNotFound)
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeDocumentRepo) Claim(id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok || doc.Status != models.StatusQueued {
		return false, nil
	}
	doc.Status = models.StatusProcessing
	return true, nil
}

func (r *fakeDocumentRepo) setStatus(id uuid.UUID, status models.DocumentStatus) error {
	return r.mutate(id, func(d *models.Document) { d.Status = status })
}

func (r *fakeDocumentRepo) MarkCompleted(id uuid.UUID, candidateID uuid.UUID) error {
	return r.mutate(id, func(d *models.Document) {
		d.Status = models.StatusCompleted
		d.CandidateID = &candidateID
		d.ErrorMessage = nil
	})
}

func (r *fakeDocumentRepo) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.mutate(id, func(d *models.Document) {
		d.Status = models.StatusFailed
		d.ErrorMessage = &errorMsg
	})
}

func (r *fakeDocumentRepo) FindPending(limit int) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Document
	for _, d := range r.docs {
		if d.Status == models.StatusQueued && len(out) < limit {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) mutate(id uuid.UUID, fn func(*models.Document)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, repositories.ErrNotFound)
	}
	fn(doc)
	return nil
}

// fakeCandidateRepo keeps insertion order, mirroring the created_at ordering
// of the real repository.
type fakeCandidateRepo struct {
	mu         sync.Mutex
	candidates []*models.Candidate
}

func (r *fakeCandidateRepo) Create(c *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.candidates = append(r.candidates, &cp)
	return nil
}

func (r *fakeCandidateRepo) FindByID(id uuid.UUID) (*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.candidates {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("candidate %s: %w", id, repositories.ErrNotFound)
}

func (r *fakeCandidateRepo) FindByIDs(ids []uuid.UUID) ([]models.Candidate, error) {
	var out []models.Candidate
	for _, id := range ids {
		if c, err := r.FindByID(id); err == nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCandidateRepo) FindAll() ([]models.Candidate, error) {
	return r.filter(func(*models.Candidate) bool { return true }), nil
}

func (r *fakeCandidateRepo) FindEmbedded() ([]models.Candidate, error) {
	return r.filter(func(c *models.Candidate) bool { return c.HasEmbedding() }), nil
}

func (r *fakeCandidateRepo) FindStale(model string) ([]models.Candidate, error) {
	return r.filter(func(c *models.Candidate) bool { return c.EmbeddingModel != model }), nil
}

func (r *fakeCandidateRepo) Update(c *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.candidates {
		if existing.ID == c.ID {
			cp := *c
			r.candidates[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("candidate %s: %w", c.ID, repositories.ErrNotFound)
}

func (r *fakeCandidateRepo) UpdateEmbedding(id uuid.UUID, embedding []float32, model string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.candidates {
		if c.ID == id {
			c.Embedding = embedding
			c.EmbeddingModel = model
			return nil
		}
	}
	return fmt.Errorf("candidate %s: %w", id, repositories.ErrNotFound)
}

func (r *fakeCandidateRepo) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.candidates {
		if c.ID == id {
			r.candidates = append(r.candidates[:i], r.candidates[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("candidate %s: %w", id, repositories.ErrNotFound)
}

func (r *fakeCandidateRepo) filter(keep func(*models.Candidate) bool) []models.Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Candidate{}
	for _, c := range r.candidates {
		if keep(c) {
			out = append(out, *c)
		}
	}
	return out
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs []*models.JobDescription
}

func (r *fakeJobRepo) Create(job *models.JobDescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs = append(r.jobs, &cp)
	return nil
}

func (r *fakeJobRepo) FindByID(id uuid.UUID) (*models.JobDescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.ID == id {
			cp := *j
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("job description %s: %w", id, repositories.ErrNotFound)
}

func (r *fakeJobRepo) FindAll() ([]models.JobDescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.JobDescription{}
	for _, j := range r.jobs {
		out = append(out, *j)
	}
	return out, nil
}

func (r *fakeJobRepo) FindStale(model string) ([]models.JobDescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.JobDescription{}
	for _, j := range r.jobs {
		if j.EmbeddingModel != model {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) UpdateEmbedding(id uuid.UUID, embedding []float32, model string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.ID == id {
			j.Embedding = embedding
			j.EmbeddingModel = model
			return nil
		}
	}
	return fmt.Errorf("job description %s: %w", id, repositories.ErrNotFound)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []DocumentEvent
}

func (n *recordingNotifier) Publish(_ context.Context, event DocumentEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) Close() error { return nil }

func (n *recordingNotifier) statuses() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.Status
	}
	return out
}

func embeddedCandidate(name string, vector []float32, skills []string, years float64) *models.Candidate {
	now := time.Now()
	return &models.Candidate{
		ID:              uuid.New(),
		Name:            name,
		Skills:          skills,
		ExperienceYears: years,
		Embedding:       vector,
		EmbeddingModel:  "stub-v1",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func embeddedJob(title string, vector []float32, skills []string, minYears float64) *models.JobDescription {
	return &models.JobDescription{
		ID:             uuid.New(),
		Title:          title,
		RequiredSkills: skills,
		MinExperience:  minYears,
		Embedding:      vector,
		EmbeddingModel: "stub-v1",
		CreatedAt:      time.Now(),
	}
}
