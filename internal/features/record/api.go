package record

import (
	"go-cmms/internal/config"
	"go-cmms/internal/middleware"
	"go-cmms/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type RecordApi struct {
	recordController *RecordController
	config           *config.Config
	tokens           *utils.TokenManager
	gate             *middleware.PermissionGate
}

func NewRecordApi(
	recordController *RecordController,
	config *config.Config,
	tokens *utils.TokenManager,
	gate *middleware.PermissionGate,
) *RecordApi {
	return &RecordApi{
		recordController: recordController,
		config:           config,
		tokens:           tokens,
		gate:             gate,
	}
}

// Setup registers record routes. The gate takes the module from the path and
// the action from the HTTP method.
func (h *RecordApi) Setup(app *fiber.App) {
	modules := app.Group("/api/modules", middleware.AuthMiddleware(h.config, h.tokens))
	gate := h.gate.RequireByMethod("module")

	modules.Get("/:module/records", gate, h.recordController.ListRecords)
	modules.Post("/:module/records", gate, h.recordController.CreateRecord)
	modules.Get("/:module/records/:id", gate, h.recordController.GetRecord)
	modules.Put("/:module/records/:id", gate, h.recordController.UpdateRecord)
	modules.Patch("/:module/records/:id", gate, h.recordController.UpdateRecord)
	modules.Delete("/:module/records/:id", gate, h.recordController.DeleteRecord)
}
