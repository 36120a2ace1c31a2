package analytics

import (
	"go-expense/internal/common/apperr"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AnalyticsController struct {
	Service AnalyticsService
}

func NewAnalyticsController(service AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Service: service}
}

func (c *AnalyticsController) SuggestCategory(ctx *fiber.Ctx) error {
	var body struct {
		Description string `json:"description"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if body.Description == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "description is required"})
	}
	return ctx.JSON(fiber.Map{"success": true, "data": c.Service.SuggestCategory(body.Description)})
}

func (c *AnalyticsController) Insights(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	uid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	cid, err := primitive.ObjectIDFromHex(claims.CompanyID)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	insights, err := c.Service.Insights(ctx.UserContext(), cid, uid)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "data": insights})
}

func (c *AnalyticsController) AdminStats(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	cid, err := primitive.ObjectIDFromHex(claims.CompanyID)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	stats, err := c.Service.Stats(ctx.UserContext(), cid)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "data": stats})
}
