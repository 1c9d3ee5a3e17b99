package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-ranker/internal/models"
)

type CandidateRepository interface {
	Create(candidate *models.Candidate) error
	FindByID(id uuid.UUID) (*models.Candidate, error)
	FindByIDs(ids []uuid.UUID) ([]models.Candidate, error)
	FindAll() ([]models.Candidate, error)
	FindEmbedded() ([]models.Candidate, error)
	FindStale(model string) ([]models.Candidate, error)
	Update(candidate *models.Candidate) error
	UpdateEmbedding(id uuid.UUID, embedding []float32, model string) error
	Delete(id uuid.UUID) error
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(candidate *models.Candidate) error {
	if err := r.db.Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

func (r *candidateRepository) FindByID(id uuid.UUID) (*models.Candidate, error) {
	var c models.Candidate
	if err := r.db.Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("candidate %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}
	return &c, nil
}

func (r *candidateRepository) FindByIDs(ids []uuid.UUID) ([]models.Candidate, error) {
	var cs []models.Candidate
	if err := r.db.Where("id IN ?", ids).Find(&cs).Error; err != nil {
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}
	return cs, nil
}

func (r *candidateRepository) FindAll() ([]models.Candidate, error) {
	var cs []models.Candidate
	if err := r.db.Order("created_at ASC, id ASC").Find(&cs).Error; err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return cs, nil
}

// FindEmbedded returns rankable candidates in a stable order so that rankings
// are reproducible.
func (r *candidateRepository) FindEmbedded() ([]models.Candidate, error) {
	var cs []models.Candidate
	err := r.db.
		Where("embedding IS NOT NULL AND embedding_model <> ''").
		Order("created_at ASC, id ASC").
		Find(&cs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded candidates: %w", err)
	}
	return cs, nil
}

func (r *candidateRepository) FindStale(model string) ([]models.Candidate, error) {
	var cs []models.Candidate
	err := r.db.
		Where("embedding_model IS NULL OR embedding_model <> ?", model).
		Order("created_at ASC, id ASC").
		Find(&cs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale candidates: %w", err)
	}
	return cs, nil
}

func (r *candidateRepository) Update(candidate *models.Candidate) error {
	candidate.UpdatedAt = time.Now()
	result := r.db.Model(candidate).
		Select("name", "email", "phone", "skills", "experience_years", "embedding", "embedding_model", "updated_at").
		Updates(candidate)
	if result.Error != nil {
		return fmt.Errorf("failed to update candidate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("candidate %s: %w", candidate.ID, ErrNotFound)
	}
	return nil
}

func (r *candidateRepository) UpdateEmbedding(id uuid.UUID, embedding []float32, model string) error {
	result := r.db.Model(&models.Candidate{ID: id}).
		Select("embedding", "embedding_model", "updated_at").
		Updates(&models.Candidate{
			Embedding:      embedding,
			EmbeddingModel: model,
			UpdatedAt:      time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update candidate embedding: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *candidateRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.Candidate{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete candidate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}
	return nil
}
