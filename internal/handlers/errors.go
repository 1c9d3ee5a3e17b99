package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-ranker/internal/ranking"
	"alfredoptarigan/resume-ranker/internal/repositories"
	"alfredoptarigan/resume-ranker/internal/services"
)

// ErrorHandler is the app-wide fiber error handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return respondError(c, err)
}

func respondError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func statusFor(err error) int {
	var fiberErr *fiber.Error
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &validationErrs),
		errors.Is(err, services.ErrInvalidExtension),
		errors.Is(err, services.ErrUnsupportedFormat),
		errors.Is(err, ranking.ErrEmptyInput):
		return fiber.StatusBadRequest
	case errors.Is(err, ranking.ErrDimensionMismatch):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNotEmbedded):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid id format")
	}
	return id, nil
}
