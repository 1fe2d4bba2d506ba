package auth

import (
	"strings"

	"retail-backend/internal/config"
	"retail-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUserRoleKey = "user_role"
)

// JWTMiddleware resolves the caller's identity and role from the Bearer
// token. The token is trusted for identity and role only; permission checks
// happen downstream in RequirePermission.
func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "No token provided")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "No token provided")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}
		if claims.UserID == 0 {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token payload")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserRoleKey, claims.Role)

		return c.Next()
	}
}

// RequirePermission gates a route on the role/permission table. Identity is
// already established by JWTMiddleware; a valid identity without the
// permission gets 403.
func RequirePermission(action models.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.Role)
		if !ok || !models.Allowed(role, action) {
			return fiber.NewError(fiber.StatusForbidden, "Permission denied")
		}
		return c.Next()
	}
}

// CallerID returns the authenticated user id set by JWTMiddleware.
func CallerID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(CtxUserIDKey).(uint)
	return id, ok
}

// CallerRole returns the authenticated role set by JWTMiddleware.
func CallerRole(c *fiber.Ctx) (models.Role, bool) {
	role, ok := c.Locals(CtxUserRoleKey).(models.Role)
	return role, ok
}
