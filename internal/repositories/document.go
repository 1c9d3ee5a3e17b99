package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-ranker/internal/models"
)

type DocumentRepository interface {
	Create(document *models.Document) error
	FindByID(id uuid.UUID) (*models.Document, error)
	Claim(id uuid.UUID) (bool, error)
	MarkCompleted(id uuid.UUID, candidateID uuid.UUID) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPending(limit int) ([]models.Document, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create implements DocumentRepository.
func (d *documentRepository) Create(document *models.Document) error {
	if err := d.db.Create(document).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// FindByID implements DocumentRepository.
func (d *documentRepository) FindByID(id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := d.db.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	return &doc, nil
}

// Claim moves a queued document to processing. It reports false when the
// document is missing or another run already took it.
func (d *documentRepository) Claim(id uuid.UUID) (bool, error) {
	result := d.db.Model(&models.Document{}).
		Where("id = ? AND status = ?", id, models.StatusQueued).
		Updates(map[string]interface{}{
			"status":     models.StatusProcessing,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to claim document: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// MarkCompleted implements DocumentRepository.
func (d *documentRepository) MarkCompleted(id uuid.UUID, candidateID uuid.UUID) error {
	return d.update(id, map[string]interface{}{
		"status":        models.StatusCompleted,
		"candidate_id":  candidateID,
		"error_message": nil,
	})
}

// UpdateError implements DocumentRepository.
func (d *documentRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	return d.update(id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
	})
}

// FindPending implements DocumentRepository.
func (d *documentRepository) FindPending(limit int) ([]models.Document, error) {
	var docs []models.Document
	err := d.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&docs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending documents: %w", err)
	}

	return docs, nil
}

func (d *documentRepository) update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result := d.db.Model(&models.Document{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update document: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}

	return nil
}
