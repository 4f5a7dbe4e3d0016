package handler

import (
	"errors"

	"go-media-cms/internal/access"
	"go-media-cms/internal/repository"
	"go-media-cms/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errInvalidID = errors.New("invalid id")

// respondError maps service errors onto HTTP statuses.
func respondError(c *fiber.Ctx, log *zap.SugaredLogger, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, errInvalidID),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrInvalidResetToken):
		status = fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = fiber.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, access.ErrBootstrapUnavailable):
		log.Errorw("first admin check failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Service temporarily unavailable"})
	default:
		log.Errorw("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(status).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

func pageFrom(c *fiber.Ctx) repository.Page {
	return repository.Page{
		Number: c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", repository.DefaultPageSize),
	}
}

// paginated is the list envelope returned by every collection.
func paginated(docs interface{}, total int64, page repository.Page) fiber.Map {
	number := page.Number
	if number < 1 {
		number = 1
	}
	return fiber.Map{
		"docs":       docs,
		"totalDocs":  total,
		"page":       number,
		"limit":      page.Size(),
		"totalPages": page.TotalPages(total),
	}
}
