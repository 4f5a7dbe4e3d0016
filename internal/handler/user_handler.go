package handler

import (
	"go-media-cms/internal/access"
	"go-media-cms/internal/middleware"
	"go-media-cms/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService service.UserService
	log         *zap.SugaredLogger
}

func NewUserHandler(userService service.UserService, log *zap.SugaredLogger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

// GetUsers returns a page of users
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	page := pageFrom(c)
	users, total, err := h.userService.List(c.UserContext(), middleware.CurrentUser(c), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(paginated(users, total, page))
}

// GetUser returns a single user by ID
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	user, err := h.userService.Get(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(user)
}

// CreateUser handles user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	requester := middleware.CurrentUser(c)
	user, err := h.userService.Create(c.UserContext(), requester, &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"data":    user.ToResponse(access.UserRoles.Allows(access.OpRead, requester)),
	})
}

// UpdateUser handles user update
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	requester := middleware.CurrentUser(c)
	user, err := h.userService.Update(c.UserContext(), requester, id, &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"data":    user.ToResponse(access.UserRoles.Allows(access.OpRead, requester)),
	})
}

// DeleteUser handles user deletion
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.userService.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
