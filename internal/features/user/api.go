package user

import (
	"go-expense/internal/common/api"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/config"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	config     *config.Config
}

func NewUserApi(controller *UserController, config *config.Config) api.Route {
	return &UserApi{
		controller: controller,
		config:     config,
	}
}

func (h *UserApi) Setup(app *fiber.App) {
	group := app.Group("/api/admin/users",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(common_models.RoleAdmin),
	)

	group.Get("/", h.controller.ListUsers)
	group.Put("/:id/role", h.controller.UpdateRole)
	group.Put("/:id/status", h.controller.UpdateStatus)
}
