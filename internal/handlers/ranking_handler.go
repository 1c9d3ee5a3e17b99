package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/ranking"
	"alfredoptarigan/resume-ranker/internal/services"
)

type RankingHandler struct {
	rankingService services.RankingService
}

func NewRankingHandler(rankingService services.RankingService) *RankingHandler {
	return &RankingHandler{rankingService: rankingService}
}

// HandleRankJob handles GET /jobs/:id/ranking
func (h *RankingHandler) HandleRankJob(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	resp, err := h.rankingService.RankJob(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

// HandleShortlist handles GET /jobs/:id/shortlist?limit=N
func (h *RankingHandler) HandleShortlist(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must not be negative",
		})
	}

	resp, err := h.rankingService.Shortlist(c.UserContext(), id, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

// HandleRankVectors handles POST /rank. Both validation failures are client
// errors here since the caller supplied the vectors.
func (h *RankingHandler) HandleRankVectors(c *fiber.Ctx) error {
	var req models.RankVectorsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	resp, err := h.rankingService.RankVectors(req)
	if err != nil {
		if errors.Is(err, ranking.ErrDimensionMismatch) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
				"code":  fiber.StatusBadRequest,
			})
		}
		return respondError(c, err)
	}

	return c.JSON(resp)
}
