package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/devshare/internal/config"
	"github.com/localnerve/devshare/internal/services"
	"github.com/localnerve/devshare/internal/types"
	"gorm.io/gorm"
)

// LocalsUserID is the Locals key carrying the authenticated user id
const LocalsUserID = "userID"

// LocalsClaims is the Locals key carrying the parsed token claims
const LocalsClaims = "claims"

// AuthRequired validates the bearer access token, rejects revoked tokens,
// and stores the user id and claims in the request context.
func AuthRequired(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := bearerClaims(c, cfg)
		if err != nil {
			return err
		}
		if claims.TokenType != services.TokenTypeAccess {
			return types.Unauthorized("Access token required")
		}
		revoked, err := services.IsTokenRevoked(db, claims.ID)
		if err != nil {
			return err
		}
		if revoked {
			return types.Unauthorized("Token has been revoked")
		}
		c.Locals(LocalsUserID, claims.Subject)
		c.Locals(LocalsClaims, claims)
		return c.Next()
	}
}

// bearerClaims extracts and validates the Authorization bearer token
func bearerClaims(c *fiber.Ctx, cfg *config.Config) (*services.Claims, error) {
	header := c.Get("Authorization")
	if header == "" {
		return nil, types.Unauthorized("Authorization header required")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, types.Unauthorized("Authorization header must be a bearer token")
	}
	return services.ParseToken(cfg.JWTSecret, strings.TrimSpace(parts[1]))
}
