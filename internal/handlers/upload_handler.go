package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/repositories"
	"alfredoptarigan/resume-ranker/internal/services"
)

const resumeField = "resume"

type UploadHandler struct {
	docRepo        repositories.DocumentRepository
	storageService services.StorageService
	worker         services.Worker
	maxFileSize    int64
	log            *zap.Logger
}

func NewUploadHandler(
	docRepo repositories.DocumentRepository,
	storageService services.StorageService,
	worker services.Worker,
	maxFileSize int64,
	log *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		docRepo:        docRepo,
		storageService: storageService,
		worker:         worker,
		maxFileSize:    maxFileSize,
		log:            log,
	}
}

// HandleUpload handles POST /upload. Every file under the "resume" field is
// stored, recorded as queued and handed to the worker.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	files := form.File[resumeField]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No files uploaded. Please upload one or more 'resume' files (PDF, DOCX or TXT).",
		})
	}

	// reject the whole batch before anything is written
	for _, file := range files {
		if file.Size > h.maxFileSize {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("%s is too large. Max size: %d bytes", file.Filename, h.maxFileSize),
			})
		}
		if _, err := services.ValidateExtension(file.Filename); err != nil {
			return respondError(c, fmt.Errorf("%s: %w", file.Filename, err))
		}
	}

	ctx := c.UserContext()
	responses := make([]models.UploadResponse, 0, len(files))

	for _, file := range files {
		filename, filePath, err := h.storageService.SaveFile(ctx, file)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to save resume file: %v", err),
			})
		}

		now := time.Now()
		doc := models.Document{
			ID:               uuid.New(),
			Filename:         filename,
			OriginalFileName: file.Filename,
			FileType:         resumeField,
			FilePath:         filePath,
			Size:             file.Size,
			Status:           models.StatusQueued,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		if err := h.docRepo.Create(&doc); err != nil {
			if derr := h.storageService.DeleteFile(ctx, filename); derr != nil {
				h.log.Warn("⚠️ Failed to clean up orphaned upload", zap.String("filename", filename), zap.Error(derr))
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to save resume document record: %v", err),
			})
		}

		h.worker.Enqueue(doc.ID)

		responses = append(responses, models.UploadResponse{
			ID:           doc.ID.String(),
			Filename:     doc.Filename,
			OriginalName: doc.OriginalFileName,
			FileType:     doc.FileType,
			Status:       string(doc.Status),
		})
	}

	h.log.Info("📥 Resumes queued", zap.Int("count", len(responses)))

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message":   "Files uploaded and queued for processing",
		"documents": responses,
	})
}
