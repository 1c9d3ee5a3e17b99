package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/repositories"
)

type ProfileService interface {
	ProcessDocument(ctx context.Context, docID uuid.UUID) error
	IngestResume(ctx context.Context, filename string, data []byte, documentID *uuid.UUID) (*models.Candidate, error)
	UpdateCandidate(ctx context.Context, id uuid.UUID, req models.UpdateCandidateRequest) (*models.Candidate, error)
	DeleteCandidate(ctx context.Context, id uuid.UUID) error
	CreateJob(ctx context.Context, req models.CreateJobRequest) (*models.JobDescription, error)
	ReembedStale(ctx context.Context) (*ReembedReport, error)
}

type ReembedReport struct {
	Model      string `json:"model"`
	Candidates int    `json:"candidates"`
	Jobs       int    `json:"jobs"`
	Failed     int    `json:"failed"`
}

type profileService struct {
	docRepo       repositories.DocumentRepository
	candidateRepo repositories.CandidateRepository
	jobRepo       repositories.JobRepository
	storage       StorageService
	parser        ResumeParser
	embedder      EmbeddingProvider
	vectors       VectorStore
	notifier      Notifier
	log           *zap.Logger
}

type ProfileDeps struct {
	DocumentRepo  repositories.DocumentRepository
	CandidateRepo repositories.CandidateRepository
	JobRepo       repositories.JobRepository
	Storage       StorageService
	Parser        ResumeParser
	Embedder      EmbeddingProvider
	Vectors       VectorStore
	Notifier      Notifier
	Logger        *zap.Logger
}

func NewProfileService(deps ProfileDeps) ProfileService {
	if deps.Notifier == nil {
		deps.Notifier = NewNoopNotifier()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &profileService{
		docRepo:       deps.DocumentRepo,
		candidateRepo: deps.CandidateRepo,
		jobRepo:       deps.JobRepo,
		storage:       deps.Storage,
		parser:        deps.Parser,
		embedder:      deps.Embedder,
		vectors:       deps.Vectors,
		notifier:      deps.Notifier,
		log:           deps.Logger,
	}
}

// ProcessDocument turns a queued upload into a stored, embedded candidate.
// Only queued documents are processed; the document row records the outcome
// either way.
func (p *profileService) ProcessDocument(ctx context.Context, docID uuid.UUID) error {
	start := time.Now()

	claimed, err := p.docRepo.Claim(docID)
	if err != nil {
		return fmt.Errorf("failed to claim document: %w", err)
	}
	if !claimed {
		p.log.Debug("⏭️ Document already taken, skipping", zap.String("document_id", docID.String()))
		return nil
	}

	p.log.Info("🔄 Processing document", zap.String("document_id", docID.String()))

	candidate, err := p.processDocument(ctx, docID)
	DocumentProcessingDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		DocumentsProcessed.WithLabelValues(string(models.StatusFailed)).Inc()
		if uerr := p.docRepo.UpdateError(docID, err.Error()); uerr != nil {
			p.log.Error("❌ Failed to record document error", zap.Error(uerr))
		}
		p.notify(ctx, DocumentEvent{
			DocumentID: docID.String(),
			Status:     string(models.StatusFailed),
			Error:      err.Error(),
		})
		return err
	}

	if err := p.docRepo.MarkCompleted(docID, candidate.ID); err != nil {
		return fmt.Errorf("failed to mark document completed: %w", err)
	}

	DocumentsProcessed.WithLabelValues(string(models.StatusCompleted)).Inc()
	p.notify(ctx, DocumentEvent{
		DocumentID:  docID.String(),
		CandidateID: candidate.ID.String(),
		Status:      string(models.StatusCompleted),
	})

	p.log.Info("✅ Document processed",
		zap.String("document_id", docID.String()),
		zap.String("candidate_id", candidate.ID.String()),
		zap.String("name", candidate.Name),
		zap.Int("skills", len(candidate.Skills)),
	)
	return nil
}

func (p *profileService) processDocument(ctx context.Context, docID uuid.UUID) (*models.Candidate, error) {
	doc, err := p.docRepo.FindByID(docID)
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	data, err := p.storage.ReadFile(ctx, doc.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume: %w", err)
	}

	name := doc.OriginalFileName
	if name == "" {
		name = doc.Filename
	}

	return p.IngestResume(ctx, name, data, &doc.ID)
}

// IngestResume parses, validates, embeds and stores one résumé file.
func (p *profileService) IngestResume(ctx context.Context, filename string, data []byte, documentID *uuid.UUID) (*models.Candidate, error) {
	parsed, err := p.parser.Parse(filename, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse resume: %w", err)
	}

	p.log.Debug("📄 Resume parsed",
		zap.String("filename", filename),
		zap.String("text", logger.TruncateForLog(parsed.Text, 200)),
	)

	candidate, err := models.NewCandidate(models.CandidateInput{
		DocumentID:        documentID,
		Name:              parsed.Name,
		Email:             parsed.Email,
		Phone:             parsed.Phone,
		Skills:            parsed.Skills,
		Education:         parsed.Education,
		ExperienceEntries: parsed.Experience,
		ExperienceYears:   parsed.ExperienceYears,
		ExperienceSummary: parsed.ExperienceSummary,
		ResumeFilename:    filename,
	})
	if err != nil {
		return nil, err
	}

	if err := p.embedCandidate(ctx, candidate); err != nil {
		return nil, err
	}

	if err := p.candidateRepo.Create(candidate); err != nil {
		return nil, err
	}

	p.index(ctx, candidate.ID, KindCandidate, candidate.Embedding, candidate.Name)
	return candidate, nil
}

func (p *profileService) UpdateCandidate(ctx context.Context, id uuid.UUID, req models.UpdateCandidateRequest) (*models.Candidate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	candidate, err := p.candidateRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	candidate.Name = req.Name
	candidate.Email = req.Email
	candidate.Phone = req.Phone
	candidate.ExperienceYears = req.ExperienceYears
	if req.Skills != nil {
		candidate.Skills = req.Skills
	}

	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	if err := p.embedCandidate(ctx, candidate); err != nil {
		return nil, err
	}

	if err := p.candidateRepo.Update(candidate); err != nil {
		return nil, err
	}

	p.index(ctx, candidate.ID, KindCandidate, candidate.Embedding, candidate.Name)
	return candidate, nil
}

func (p *profileService) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	if err := p.candidateRepo.Delete(id); err != nil {
		return err
	}

	if err := p.vectors.Delete(ctx, id.String()); err != nil {
		p.log.Warn("⚠️ Failed to remove candidate vector", zap.String("candidate_id", id.String()), zap.Error(err))
	}
	return nil
}

func (p *profileService) CreateJob(ctx context.Context, req models.CreateJobRequest) (*models.JobDescription, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job, err := models.NewJobDescription(models.JobInput{
		Title:          req.Title,
		Description:    req.Description,
		RequiredSkills: req.RequiredSkills,
		MinExperience:  req.MinExperience,
	})
	if err != nil {
		return nil, err
	}

	vector, err := p.embed(ctx, job.ProfileText())
	if err != nil {
		return nil, err
	}
	job.Embedding = vector
	job.EmbeddingModel = p.embedder.Model()

	if err := p.jobRepo.Create(job); err != nil {
		return nil, err
	}

	p.index(ctx, job.ID, KindJob, job.Embedding, job.Title)
	p.log.Info("✅ Job description created", zap.String("job_id", job.ID.String()), zap.String("title", job.Title))
	return job, nil
}

// ReembedStale refreshes every record embedded with a different model than
// the current provider. Individual failures are counted and skipped.
func (p *profileService) ReembedStale(ctx context.Context) (*ReembedReport, error) {
	model := p.embedder.Model()
	report := &ReembedReport{Model: model}

	candidates, err := p.candidateRepo.FindStale(model)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		c := &candidates[i]
		vector, err := p.embed(ctx, c.ProfileText())
		if err == nil {
			err = p.candidateRepo.UpdateEmbedding(c.ID, vector, model)
		}
		if err != nil {
			report.Failed++
			p.log.Warn("⚠️ Failed to re-embed candidate", zap.String("candidate_id", c.ID.String()), zap.Error(err))
			continue
		}

		p.index(ctx, c.ID, KindCandidate, vector, c.Name)
		report.Candidates++
	}

	jobs, err := p.jobRepo.FindStale(model)
	if err != nil {
		return report, err
	}

	for i := range jobs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		j := &jobs[i]
		vector, err := p.embed(ctx, j.ProfileText())
		if err == nil {
			err = p.jobRepo.UpdateEmbedding(j.ID, vector, model)
		}
		if err != nil {
			report.Failed++
			p.log.Warn("⚠️ Failed to re-embed job", zap.String("job_id", j.ID.String()), zap.Error(err))
			continue
		}

		p.index(ctx, j.ID, KindJob, vector, j.Title)
		report.Jobs++
	}

	p.log.Info("✅ Re-embedding finished",
		zap.String("model", model),
		zap.Int("candidates", report.Candidates),
		zap.Int("jobs", report.Jobs),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (p *profileService) embedCandidate(ctx context.Context, candidate *models.Candidate) error {
	vector, err := p.embed(ctx, candidate.ProfileText())
	if err != nil {
		return err
	}
	candidate.Embedding = vector
	candidate.EmbeddingModel = p.embedder.Model()
	return nil
}

func (p *profileService) embed(ctx context.Context, text string) ([]float32, error) {
	vector, err := p.embedder.Embed(ctx, text)
	if err != nil {
		EmbeddingRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(vector) == 0 {
		EmbeddingRequests.WithLabelValues("error").Inc()
		return nil, ErrEmptyEmbedding
	}

	EmbeddingRequests.WithLabelValues("success").Inc()
	return vector, nil
}

// index keeps the shortlist index in step. Failures are logged only since
// rankings are computed from the database.
func (p *profileService) index(ctx context.Context, id uuid.UUID, kind string, vector []float32, name string) {
	err := p.vectors.Upsert(ctx, id.String(), kind, vector, map[string]string{"name": name})
	if err != nil {
		p.log.Warn("⚠️ Failed to index vector",
			zap.String("id", id.String()),
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
}

func (p *profileService) notify(ctx context.Context, event DocumentEvent) {
	event.Timestamp = time.Now().UTC()
	if err := p.notifier.Publish(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
		p.log.Warn("⚠️ Failed to publish document event",
			zap.String("document_id", event.DocumentID),
			zap.Error(err),
		)
	}
}
