package audit

import (
	"go-expense/internal/common/api"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/config"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	config     *config.Config
}

func NewAuditApi(controller *AuditController, config *config.Config) api.Route {
	return &AuditApi{
		controller: controller,
		config:     config,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	group := app.Group("/api/audit",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(common_models.RoleAdmin),
	)

	group.Get("/", h.controller.ListAuditLogs)
	group.Get("/:module/:recordId", h.controller.RecordHistory)
}
