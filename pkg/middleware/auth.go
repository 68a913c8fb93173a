// Package middleware holds the Fiber middleware shared by the HTTP routes.
package middleware

import (
	"strings"

	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain/user"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtProtected verifies the bearer token and stores it in c.Locals("user").
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.Secret)},
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if strings.EqualFold(err.Error(), "missing or malformed JWT") {
		return problem(c, fiber.StatusBadRequest, "Missing or malformed JWT", err.Error())
	}
	return problem(c, fiber.StatusUnauthorized, "Invalid or expired JWT", err.Error())
}

// RequireRole lets the request through only when the verified token
// carries role. It must run after JwtProtected.
func RequireRole(role user.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return problem(c, fiber.StatusUnauthorized, "Unauthorized", "missing user context")
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims["role"] != string(role) {
			return problem(c, fiber.StatusForbidden, "Forbidden", "insufficient role")
		}
		return c.Next()
	}
}

// problem writes an RFC 9457 body; webapi/common cannot be imported from
// here without a cycle.
func problem(c *fiber.Ctx, status int, title, detail string) error {
	return c.Status(status).JSON(fiber.Map{
		"type":     "about:blank",
		"title":    title,
		"status":   status,
		"detail":   detail,
		"instance": c.OriginalURL(),
	}, "application/problem+json")
}
