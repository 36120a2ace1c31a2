package rule

import (
	"go-expense/internal/common/apperr"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RuleController struct {
	Service RuleService
}

func NewRuleController(service RuleService) *RuleController {
	return &RuleController{Service: service}
}

func (c *RuleController) CreateRule(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	var rule ApprovalRule
	if err := ctx.BodyParser(&rule); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := c.Service.Create(ctx.UserContext(), claims.CompanyID, &rule)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": created})
}

func (c *RuleController) ListRules(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	rules, err := c.Service.List(ctx.UserContext(), claims.CompanyID)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "data": rules, "total": len(rules)})
}

func (c *RuleController) GetRule(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	rule, err := c.Service.Get(ctx.UserContext(), claims.CompanyID, ctx.Params("id"))
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "data": rule})
}

func (c *RuleController) UpdateRule(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	var rule ApprovalRule
	if err := ctx.BodyParser(&rule); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updated, err := c.Service.Update(ctx.UserContext(), claims.CompanyID, ctx.Params("id"), &rule)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "data": updated})
}

func (c *RuleController) SetRuleActive(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	var body struct {
		IsActive bool `json:"isActive"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.SetActive(ctx.UserContext(), claims.CompanyID, ctx.Params("id"), body.IsActive); err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	message := "Rule deactivated"
	if body.IsActive {
		message = "Rule activated"
	}
	return ctx.JSON(fiber.Map{"success": true, "message": message})
}

func (c *RuleController) DeleteRule(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	if err := c.Service.Delete(ctx.UserContext(), claims.CompanyID, ctx.Params("id")); err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "message": "Rule deleted"})
}
