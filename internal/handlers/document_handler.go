package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/repositories"
)

type DocumentHandler struct {
	docRepo repositories.DocumentRepository
}

func NewDocumentHandler(docRepo repositories.DocumentRepository) *DocumentHandler {
	return &DocumentHandler{docRepo: docRepo}
}

// HandleGetDocument handles GET /documents/:id
func (h *DocumentHandler) HandleGetDocument(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	doc, err := h.docRepo.FindByID(id)
	if err != nil {
		return respondError(c, err)
	}

	resp := models.DocumentStatusResponse{
		ID:           doc.ID.String(),
		Status:       string(doc.Status),
		ErrorMessage: doc.ErrorMessage,
	}
	if doc.CandidateID != nil {
		candidateID := doc.CandidateID.String()
		resp.CandidateID = &candidateID
	}

	return c.JSON(resp)
}
