package company

import (
	"go-expense/internal/common/apperr"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type CompanyController struct {
	Service CompanyService
}

func NewCompanyController(service CompanyService) *CompanyController {
	return &CompanyController{Service: service}
}

// GetCompany returns the caller's company profile
func (c *CompanyController) GetCompany(ctx *fiber.Ctx) error {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	company, err := c.Service.Get(ctx.UserContext(), claims.CompanyID)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "company": company})
}

// UpdateSettings replaces the company-wide expense settings
func (c *CompanyController) UpdateSettings(ctx *fiber.Ctx) error {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	var settings Settings
	if err := ctx.BodyParser(&settings); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateSettings(ctx.UserContext(), claims.CompanyID, settings); err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "message": "Company settings updated"})
}
