package expense

import (
	"go-expense/internal/common/api"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/config"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ExpenseApi struct {
	controller *ExpenseController
	config     *config.Config
}

func NewExpenseApi(controller *ExpenseController, config *config.Config) api.Route {
	return &ExpenseApi{
		controller: controller,
		config:     config,
	}
}

func (h *ExpenseApi) Setup(app *fiber.App) {
	group := app.Group("/api/expenses", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/", h.controller.SubmitExpense)
	group.Get("/", h.controller.ListMyExpenses)
	group.Get("/pending-approvals", h.controller.ListPendingApprovals)
	group.Get("/summary", h.controller.Summary)
	group.Get("/export", h.controller.Export)
	group.Get("/company",
		middleware.RequireRole(common_models.RoleAdmin),
		h.controller.ListCompanyExpenses)
	group.Get("/:id", h.controller.GetExpense)
	group.Post("/:id/approve", h.controller.ApproveExpense)
	group.Post("/:id/reject", h.controller.RejectExpense)
	group.Post("/:id/pay",
		middleware.RequireRole(common_models.RoleAdmin),
		h.controller.PayExpense)
	group.Post("/:id/comments", h.controller.AddComment)
}
