package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// CurrentAPIVersion is the version reported when the client sends none
const CurrentAPIVersion = "1.0.0"

// VersionMiddleware negotiates the X-Api-Version header: the requested
// version is stored in context and echoed back on the response.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", CurrentAPIVersion)

		// Major-only and major.minor aliases resolve to the full version
		switch version {
		case "1", "1.0":
			version = CurrentAPIVersion
		}

		c.Locals("apiVersion", version)
		c.Set("X-Api-Version", version)

		return c.Next()
	}
}
