package company

import (
	"go-expense/internal/common/api"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/config"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type CompanyApi struct {
	controller *CompanyController
	config     *config.Config
}

func NewCompanyApi(controller *CompanyController, config *config.Config) api.Route {
	return &CompanyApi{
		controller: controller,
		config:     config,
	}
}

func (h *CompanyApi) Setup(app *fiber.App) {
	group := app.Group("/api/company", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.GetCompany)
	group.Put("/settings", middleware.RequireRole(common_models.RoleAdmin), h.controller.UpdateSettings)
}
