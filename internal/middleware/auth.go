package middleware

import (
	"strings"

	"storefront_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

const userKey = "user"

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the claims under c.Locals("user").
func AuthMiddleware(tokens *jwt.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization token",
			})
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(userKey, claims)
		return c.Next()
	}
}

// OptionalAuth stores the claims when a valid token is present and lets the
// request through either way.
func OptionalAuth(tokens *jwt.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if claims, err := tokens.ValidateToken(token); err == nil {
				c.Locals(userKey, claims)
			}
		}
		return c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := CurrentUser(c)
		if claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		for _, role := range roles {
			if claims.Role == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't have permission to access this resource",
		})
	}
}

// CurrentUser returns the request's claims or nil.
func CurrentUser(c *fiber.Ctx) *jwt.Claims {
	claims, _ := c.Locals(userKey).(*jwt.Claims)
	return claims
}

// CurrentCustomerID returns the subject when the caller is a signed-in
// customer.
func CurrentCustomerID(c *fiber.Ctx) string {
	if claims := CurrentUser(c); claims != nil && claims.Role == jwt.RoleCustomer {
		return claims.Subject
	}
	return ""
}
