package api

import "github.com/gofiber/fiber/v2"

// Route is implemented by every feature API; cmd/api collects them through
// the fx "routes" group and calls Setup once at startup.
type Route interface {
	Setup(app *fiber.App)
}
