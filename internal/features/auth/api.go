package auth

import (
	"go-expense/internal/common/api"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/config"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
	config     *config.Config
}

func NewAuthApi(controller *AuthController, config *config.Config) api.Route {
	return &AuthApi{
		controller: controller,
		config:     config,
	}
}

func (h *AuthApi) Setup(app *fiber.App) {
	group := app.Group("/api/auth")

	group.Post("/register", h.controller.RegisterCompany)
	group.Post("/login", h.controller.Login)

	group.Get("/profile",
		middleware.AuthMiddleware(h.config.SkipAuth),
		h.controller.Profile)

	group.Post("/register-employee",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(common_models.RoleAdmin),
		h.controller.RegisterEmployee)
}
