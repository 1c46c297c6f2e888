package middleware

import (
	"strings"

	"go-cmms/internal/config"
	"go-cmms/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates JWT tokens and injects user claims into the fiber
// locals and the user context. It only establishes identity; module access is
// decided by PermissionGate.
func AuthMiddleware(cfg *config.Config, tokens *utils.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.SkipAuth {
			// Dev principal: still resolved from the database by the gate
			setClaims(c, &utils.UserClaims{UserID: cfg.DevUserID})
			return c.Next()
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		setClaims(c, claims)
		return c.Next()
	}
}

func setClaims(c *fiber.Ctx, claims *utils.UserClaims) {
	c.Locals(utils.UserClaimsKey, claims)
	c.SetUserContext(utils.ContextWithClaims(c.UserContext(), claims))
}

// ClaimsFrom returns the principal set by AuthMiddleware
func ClaimsFrom(c *fiber.Ctx) (*utils.UserClaims, bool) {
	claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	return claims, ok && claims != nil
}
