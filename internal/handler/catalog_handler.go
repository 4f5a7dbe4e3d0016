package handler

import (
	"go-media-cms/internal/middleware"
	"go-media-cms/internal/model"
	"go-media-cms/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog service.CatalogService
	log     *zap.SugaredLogger
}

func NewCatalogHandler(catalog service.CatalogService, log *zap.SugaredLogger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

// GET /api/v1/genres
func (h *CatalogHandler) GetGenres(c *fiber.Ctx) error {
	genres, err := h.catalog.Genres(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(genres)
}

// GET /api/v1/casts
func (h *CatalogHandler) GetCasts(c *fiber.Ctx) error {
	page := pageFrom(c)
	casts, total, err := h.catalog.ListCasts(c.UserContext(), middleware.CurrentUser(c), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(paginated(casts, total, page))
}

// GET /api/v1/casts/:id
func (h *CatalogHandler) GetCast(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	cast, err := h.catalog.GetCast(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(cast)
}

// POST /api/v1/casts
func (h *CatalogHandler) CreateCast(c *fiber.Ctx) error {
	var cast model.Cast
	if err := c.BodyParser(&cast); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	created, err := h.catalog.CreateCast(c.UserContext(), middleware.CurrentUser(c), &cast)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Cast member created successfully",
		"doc":     created,
	})
}

// PUT /api/v1/casts/:id
func (h *CatalogHandler) UpdateCast(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var cast model.Cast
	if err := c.BodyParser(&cast); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	updated, err := h.catalog.UpdateCast(c.UserContext(), middleware.CurrentUser(c), id, &cast)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "Cast member updated successfully",
		"doc":     updated,
	})
}

// DELETE /api/v1/casts/:id
func (h *CatalogHandler) DeleteCast(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.catalog.DeleteCast(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Cast member deleted successfully"})
}
