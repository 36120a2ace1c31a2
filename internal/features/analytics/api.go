package analytics

import (
	"go-expense/internal/common/api"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/config"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsApi struct {
	controller *AnalyticsController
	config     *config.Config
}

func NewAnalyticsApi(controller *AnalyticsController, config *config.Config) api.Route {
	return &AnalyticsApi{
		controller: controller,
		config:     config,
	}
}

func (h *AnalyticsApi) Setup(app *fiber.App) {
	group := app.Group("/api/analytics", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/suggest-category", h.controller.SuggestCategory)
	group.Get("/insights", h.controller.Insights)

	app.Get("/api/admin/stats",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(common_models.RoleAdmin),
		h.controller.AdminStats)
}
