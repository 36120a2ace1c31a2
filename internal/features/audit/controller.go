package audit

import (
	"go-expense/internal/common/apperr"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

func (c *AuditController) ListAuditLogs(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	entries, err := c.Service.List(ctx.UserContext(), claims.CompanyID,
		ctx.Query("module"), int64(ctx.QueryInt("limit", 100)))
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "data": entries, "total": len(entries)})
}

func (c *AuditController) RecordHistory(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	entries, err := c.Service.History(ctx.UserContext(), claims.CompanyID,
		ctx.Params("module"), ctx.Params("recordId"))
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "data": entries})
}
