package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/repositories"
	"alfredoptarigan/resume-ranker/internal/services"
)

type CandidateHandler struct {
	candidateRepo repositories.CandidateRepository
	profiles      services.ProfileService
}

func NewCandidateHandler(candidateRepo repositories.CandidateRepository, profiles services.ProfileService) *CandidateHandler {
	return &CandidateHandler{
		candidateRepo: candidateRepo,
		profiles:      profiles,
	}
}

// HandleList handles GET /candidates
func (h *CandidateHandler) HandleList(c *fiber.Ctx) error {
	candidates, err := h.candidateRepo.FindAll()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"candidates": candidates,
		"total":      len(candidates),
	})
}

// HandleGet handles GET /candidates/:id
func (h *CandidateHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	candidate, err := h.candidateRepo.FindByID(id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(candidate)
}

// HandleUpdate handles PUT /candidates/:id
func (h *CandidateHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.UpdateCandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	candidate, err := h.profiles.UpdateCandidate(c.UserContext(), id, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(candidate)
}

// HandleDelete handles DELETE /candidates/:id
func (h *CandidateHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.profiles.DeleteCandidate(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
