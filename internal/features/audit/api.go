package audit

import (
	"go-cmms/internal/config"
	"go-cmms/internal/middleware"
	"go-cmms/pkg/permissions"
	"go-cmms/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	config     *config.Config
	tokens     *utils.TokenManager
	gate       *middleware.PermissionGate
}

func NewAuditApi(controller *AuditController, config *config.Config, tokens *utils.TokenManager, gate *middleware.PermissionGate) *AuditApi {
	return &AuditApi{
		controller: controller,
		config:     config,
		tokens:     tokens,
		gate:       gate,
	}
}

// Setup registers the journal routes. The journal is read-only over HTTP.
func (h *AuditApi) Setup(app *fiber.App) {
	journal := app.Group("/api/journal", middleware.AuthMiddleware(h.config, h.tokens))

	journal.Get("/", h.gate.Require(permissions.ModuleJournal, permissions.ActionView), h.controller.ListLogs)
}
