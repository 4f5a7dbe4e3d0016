package handler

import (
	"time"

	"go-media-cms/internal/access"
	"go-media-cms/internal/middleware"
	"go-media-cms/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService  service.AuthService
	cookieName   string
	secureCookie bool
	log          *zap.SugaredLogger
}

func NewAuthHandler(authService service.AuthService, cookieName string, secureCookie bool, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieName:   cookieName,
		secureCookie: secureCookie,
		log:          log,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Signup creates an account
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req service.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	user, err := h.authService.Signup(c.UserContext(), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created successfully",
		"user":    user.ToResponse(false),
	})
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email and password are required"})
	}

	response, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    response.Token,
		Path:     "/",
		Expires:  response.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(response)
}

// Logout ends every session of the requester
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.CurrentUser(c)); err != nil {
		return respondError(c, h.log, err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	resp, err := h.authService.Me(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"user": resp})
}

// UpdateMe edits the requester's own account
// PATCH /api/v1/auth/me
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	var req service.UpdateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	requester := middleware.CurrentUser(c)
	user, err := h.authService.UpdateAccount(c.UserContext(), requester, &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "Account updated successfully",
		"user":    user.ToResponse(access.UserRoles.Allows(access.OpRead, requester)),
	})
}

// ForgotPassword always answers 200 so accounts cannot be enumerated
// POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email is required"})
	}
	if err := h.authService.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "If the address is registered, a reset link has been sent"})
}

// ResetPassword sets a new password from a mailed token
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Token == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Token and password are required"})
	}
	if err := h.authService.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}
