package user

import (
	"go-cmms/internal/config"
	"go-cmms/internal/middleware"
	"go-cmms/pkg/permissions"
	"go-cmms/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	config     *config.Config
	tokens     *utils.TokenManager
	gate       *middleware.PermissionGate
}

func NewUserApi(controller *UserController, config *config.Config, tokens *utils.TokenManager, gate *middleware.PermissionGate) *UserApi {
	return &UserApi{
		controller: controller,
		config:     config,
		tokens:     tokens,
		gate:       gate,
	}
}

// Setup registers all user-related routes
func (h *UserApi) Setup(app *fiber.App) {
	users := app.Group("/api/users", middleware.AuthMiddleware(h.config, h.tokens))

	view := h.gate.Require(permissions.ModulePeople, permissions.ActionView)
	edit := h.gate.Require(permissions.ModulePeople, permissions.ActionEdit)
	del := h.gate.Require(permissions.ModulePeople, permissions.ActionDelete)

	users.Post("/", edit, h.controller.CreateUser)
	users.Get("/", view, h.controller.ListUsers)
	users.Get("/:id", view, h.controller.GetUser)
	users.Put("/:id", edit, h.controller.UpdateUser)
	users.Put("/:id/status", edit, h.controller.UpdateUserStatus)
	users.Delete("/:id", del, h.controller.DeleteUser)
}
