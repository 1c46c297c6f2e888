package system

import (
	"context"
	"time"

	"go-cmms/internal/database"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type HealthApi struct {
	db *database.MongodbDB
}

func NewHealthApi(db *database.MongodbDB) *HealthApi {
	return &HealthApi{db: db}
}

// Setup registers health check routes
func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.HealthCheck)
	app.Get("/health/ready", h.ReadyCheck)
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Check if the server is up
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "OK"
// @Router       /health [get]
func (h *HealthApi) HealthCheck(c *fiber.Ctx) error {
	return c.SendString("OK")
}

// ReadyCheck godoc
// @Summary      Readiness Check
// @Description  Check that the database answers; permission checks cannot run without it
// @Tags         health
// @Produce      json
// @Success      200  {object} map[string]string
// @Failure      503  {object} map[string]string
// @Router       /health/ready [get]
func (h *HealthApi) ReadyCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.db.DB.Client().Ping(ctx, readpref.Primary()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}
