// Package middleware provides authentication, logging, and rate limiting
// middleware for the application.
package middleware

import (
	"strings"

	"plateful/internal/identity"

	"github.com/gofiber/fiber/v2"
)

// IdentityLocal is the Fiber locals key the resolved identity is stored under.
const IdentityLocal = "identity"

// ViewerFrom returns the resolved identity for the request, or the anonymous
// sentinel when no valid session token was presented.
func ViewerFrom(c *fiber.Ctx) identity.Identity {
	if id, ok := c.Locals(IdentityLocal).(identity.Identity); ok {
		return id
	}
	return identity.Anonymous
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		// WebSocket upgrades cannot set headers from the browser.
		return c.Query("token")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// AuthRequired enforces a valid session token for protected routes and
// stores the resolved identity in locals.
func AuthRequired(provider *identity.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization required",
				"code":  "AUTH_REQUIRED",
			})
		}
		id, err := provider.FromToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
				"code":  "AUTH_REQUIRED",
			})
		}
		c.Locals(IdentityLocal, id)
		return c.Next()
	}
}

// AuthOptional resolves the identity when a token is present but lets
// anonymous requests through. Engagement counts are public; only the actions
// require a session.
func AuthOptional(provider *identity.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if id, err := provider.FromToken(token); err == nil {
				c.Locals(IdentityLocal, id)
			}
		}
		return c.Next()
	}
}
