package auth

import (
	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
}

func NewAuthApi(controller *AuthController) *AuthApi {
	return &AuthApi{
		controller: controller,
	}
}

// Setup registers all auth-related routes
func (h *AuthApi) Setup(app *fiber.App) {
	app.Post("/api/login", h.controller.Login)
}
