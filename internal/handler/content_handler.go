package handler

import (
	"go-media-cms/internal/middleware"
	"go-media-cms/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ContentHandler serves one content collection. Access is decided by the
// service for whoever OptionalAuth resolved, anonymous included.
type ContentHandler[T any] struct {
	svc service.ContentService[T]
	log *zap.SugaredLogger
}

func NewContentHandler[T any](svc service.ContentService[T], log *zap.SugaredLogger) *ContentHandler[T] {
	return &ContentHandler[T]{svc: svc, log: log}
}

// Register mounts the collection routes on r.
func (h *ContentHandler[T]) Register(r fiber.Router) {
	r.Get("/", h.List)
	r.Get("/slug/:slug", h.GetBySlug)
	r.Get("/:id", h.Get)
	r.Post("/", h.Create)
	r.Put("/:id", h.Update)
	r.Delete("/:id", h.Delete)
	r.Post("/:id/views", h.RecordView)
}

// List returns a page of documents
// GET /api/v1/<collection>?page=&limit=
func (h *ContentHandler[T]) List(c *fiber.Ctx) error {
	page := pageFrom(c)
	docs, total, err := h.svc.List(c.UserContext(), middleware.CurrentUser(c), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(paginated(docs, total, page))
}

// GET /api/v1/<collection>/:id
func (h *ContentHandler[T]) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	doc, err := h.svc.Get(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(doc)
}

// GET /api/v1/<collection>/slug/:slug
func (h *ContentHandler[T]) GetBySlug(c *fiber.Ctx) error {
	doc, err := h.svc.GetBySlug(c.UserContext(), middleware.CurrentUser(c), c.Params("slug"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(doc)
}

// POST /api/v1/<collection>
func (h *ContentHandler[T]) Create(c *fiber.Ctx) error {
	var doc T
	if err := c.BodyParser(&doc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	created, err := h.svc.Create(c.UserContext(), middleware.CurrentUser(c), &doc)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Document created successfully",
		"doc":     created,
	})
}

// PUT /api/v1/<collection>/:id
func (h *ContentHandler[T]) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var doc T
	if err := c.BodyParser(&doc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	updated, err := h.svc.Update(c.UserContext(), middleware.CurrentUser(c), id, &doc)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "Document updated successfully",
		"doc":     updated,
	})
}

// DELETE /api/v1/<collection>/:id
func (h *ContentHandler[T]) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.svc.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Document deleted successfully"})
}

// RecordView bumps the views counter
// POST /api/v1/<collection>/:id/views
func (h *ContentHandler[T]) RecordView(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	views, err := h.svc.RecordView(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"views": views})
}
