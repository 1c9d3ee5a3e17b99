package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-ranker/internal/models"
)

type JobRepository interface {
	Create(job *models.JobDescription) error
	FindByID(id uuid.UUID) (*models.JobDescription, error)
	FindAll() ([]models.JobDescription, error)
	FindStale(model string) ([]models.JobDescription, error)
	UpdateEmbedding(id uuid.UUID, embedding []float32, model string) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(job *models.JobDescription) error {
	if err := r.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job description: %w", err)
	}
	return nil
}

func (r *jobRepository) FindByID(id uuid.UUID) (*models.JobDescription, error) {
	var job models.JobDescription
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job description %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find job description: %w", err)
	}
	return &job, nil
}

func (r *jobRepository) FindAll() ([]models.JobDescription, error) {
	var jobs []models.JobDescription
	if err := r.db.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list job descriptions: %w", err)
	}
	return jobs, nil
}

func (r *jobRepository) FindStale(model string) ([]models.JobDescription, error) {
	var jobs []models.JobDescription
	err := r.db.
		Where("embedding_model IS NULL OR embedding_model <> ?", model).
		Order("created_at ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale job descriptions: %w", err)
	}
	return jobs, nil
}

func (r *jobRepository) UpdateEmbedding(id uuid.UUID, embedding []float32, model string) error {
	result := r.db.Model(&models.JobDescription{ID: id}).
		Select("embedding", "embedding_model", "updated_at").
		Updates(&models.JobDescription{
			Embedding:      embedding,
			EmbeddingModel: model,
			UpdatedAt:      time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update job embedding: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("job description %s: %w", id, ErrNotFound)
	}
	return nil
}
