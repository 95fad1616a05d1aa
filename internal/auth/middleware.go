package auth

import (
	"strconv"
	"strings"

	"butce-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey      = "user_id"
	CtxUserRoleKey    = "user_role"
	CtxUsernameKey    = "username"
	CtxDisplayNameKey = "display_name"
)

func JWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header eksik")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization formatı 'Bearer <token>' olmalı")
		}

		claims, err := ParseToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Geçersiz veya süresi dolmuş token")
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil || userID == 0 {
			return fiber.NewError(fiber.StatusUnauthorized, "Token çözümlenemedi")
		}

		c.Locals(CtxUserIDKey, uint(userID))
		c.Locals(CtxUserRoleKey, claims.Role)
		c.Locals(CtxUsernameKey, claims.Username)
		c.Locals(CtxDisplayNameKey, claims.Name)

		return c.Next()
	}
}

// RequireRole allows the request when the caller's role canonicalizes to one
// of allowedRoles. With no roles given any recognized role passes.
func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, _ := c.Locals(CtxUserRoleKey).(string)
		role, ok := ParseRole(raw)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
		}

		if len(allowedRoles) == 0 {
			return c.Next()
		}
		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Bu işlem için yetkiniz yok")
	}
}

// CurrentUser returns the identity stored by JWTMiddleware.
func CurrentUser(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok || id == 0 {
		return Identity{}, false
	}
	raw, _ := c.Locals(CtxUserRoleKey).(string)
	role, _ := ParseRole(raw)
	username, _ := c.Locals(CtxUsernameKey).(string)
	name, _ := c.Locals(CtxDisplayNameKey).(string)
	return Identity{ID: id, Username: username, DisplayName: name, Role: role}, true
}
