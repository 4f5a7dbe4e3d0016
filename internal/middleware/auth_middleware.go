package middleware

import (
	"errors"
	"strings"

	"go-media-cms/internal/access"
	"go-media-cms/internal/model"
	"go-media-cms/internal/repository"
	"go-media-cms/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

const userKey = "user"

var errSessionExpired = errors.New("session expired")

// CurrentUser returns the requester stored by RequireAuth or OptionalAuth,
// or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(userKey).(*model.User)
	return user
}

// tokenFrom reads a bearer token, falling back to the session cookie.
func tokenFrom(c *fiber.Ctx, cookieName string) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Cookies(cookieName)
}

func resolve(c *fiber.Ctx, userRepo repository.UserRepository, tokens *jwt.Manager, cookieName string) (*model.User, error) {
	claims, err := tokens.ValidateToken(tokenFrom(c, cookieName))
	if err != nil {
		return nil, err
	}
	user, err := userRepo.FindByID(c.UserContext(), claims.UserID)
	if err != nil {
		return nil, err
	}
	// Logout, password reset and a newer login all rotate the version.
	if user.TokenVersion != claims.TokenVersion {
		return nil, errSessionExpired
	}
	return user, nil
}

// RequireAuth rejects requests without a valid session.
func RequireAuth(userRepo repository.UserRepository, tokens *jwt.Manager, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := resolve(c, userRepo, tokens, cookieName)
		switch {
		case errors.Is(err, jwt.ErrMissingToken):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization token"})
		case errors.Is(err, errSessionExpired):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session expired"})
		case errors.Is(err, repository.ErrNotFound):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
		case err != nil:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}
		c.Locals(userKey, user)
		return c.Next()
	}
}

// OptionalAuth attaches the requester when a valid session is present and
// otherwise continues anonymously.
func OptionalAuth(userRepo repository.UserRepository, tokens *jwt.Manager, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user, err := resolve(c, userRepo, tokens, cookieName); err == nil {
			c.Locals(userKey, user)
		}
		return c.Next()
	}
}

// RequireRole allows requesters holding at least one of roles. It must run
// after RequireAuth.
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !access.HasAnyRole(CurrentUser(c), roles...) {
			names := make([]string, len(roles))
			for i, r := range roles {
				names[i] = string(r)
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: requires one of " + strings.Join(names, ", ") + " roles",
			})
		}
		return c.Next()
	}
}
