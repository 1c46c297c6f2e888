package permission

import (
	"go-cmms/internal/config"
	"go-cmms/internal/middleware"
	"go-cmms/pkg/permissions"
	"go-cmms/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type PermissionApi struct {
	Controller *PermissionController
	config     *config.Config
	tokens     *utils.TokenManager
	gate       *middleware.PermissionGate
}

func NewPermissionApi(controller *PermissionController, config *config.Config, tokens *utils.TokenManager, gate *middleware.PermissionGate) *PermissionApi {
	return &PermissionApi{
		Controller: controller,
		config:     config,
		tokens:     tokens,
		gate:       gate,
	}
}

func (a *PermissionApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(a.config, a.tokens)

	app.Get("/api/me/permissions", auth, a.Controller.GetMyPermissions)

	perms := app.Group("/api/permissions", auth)
	RegisterRoutes(perms, a.Controller, a.gate)
}

// RegisterRoutes registers the permission administration routes.
// Administration is part of settings; exports are import/export operations.
func RegisterRoutes(r fiber.Router, ctrl *PermissionController, gate *middleware.PermissionGate) {
	view := gate.Require(permissions.ModuleSettings, permissions.ActionView)
	edit := gate.Require(permissions.ModuleSettings, permissions.ActionEdit)
	export := gate.Require(permissions.ModuleImportExport, permissions.ActionView)
	importing := gate.Require(permissions.ModuleImportExport, permissions.ActionEdit)

	// static paths before :role / :id
	r.Get("/roles/export", export, ctrl.ExportRoleDefaults)
	r.Get("/roles", view, ctrl.ListRoleDefaults)
	r.Get("/roles/:role", view, ctrl.GetRoleDefaults)

	r.Get("/users/:id", view, ctrl.GetUserPermissions)
	r.Get("/users/:id/export", export, ctrl.ExportUserPermissions)
	r.Post("/users/:id/import", importing, edit, ctrl.ImportUserPermissions)
	r.Put("/users/:id", edit, ctrl.ReplacePermissions)
	r.Put("/users/:id/modules/:module", edit, ctrl.SetModulePermission)
	r.Post("/users/:id/reset", edit, ctrl.ResetPermissions)
	r.Put("/users/:id/role", edit, ctrl.ChangeRole)

	r.Post("/backfill", edit, ctrl.Backfill)
}
