package rule

import (
	"go-expense/internal/common/api"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/config"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RuleApi struct {
	controller *RuleController
	config     *config.Config
}

func NewRuleApi(controller *RuleController, config *config.Config) api.Route {
	return &RuleApi{
		controller: controller,
		config:     config,
	}
}

func (h *RuleApi) Setup(app *fiber.App) {
	group := app.Group("/api/rules",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(common_models.RoleAdmin),
	)

	group.Post("/", h.controller.CreateRule)
	group.Get("/", h.controller.ListRules)
	group.Get("/:id", h.controller.GetRule)
	group.Put("/:id", h.controller.UpdateRule)
	group.Patch("/:id/active", h.controller.SetRuleActive)
	group.Delete("/:id", h.controller.DeleteRule)
}
