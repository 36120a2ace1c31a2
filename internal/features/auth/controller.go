package auth

import (
	"go-expense/internal/common/apperr"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Service AuthService
}

func NewAuthController(service AuthService) *AuthController {
	return &AuthController{Service: service}
}

func (c *AuthController) RegisterCompany(ctx *fiber.Ctx) error {
	var input RegisterCompanyInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := c.Service.RegisterCompany(ctx.UserContext(), input)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": result})
}

func (c *AuthController) RegisterEmployee(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	var input RegisterEmployeeInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := c.Service.RegisterEmployee(ctx.UserContext(), claims.CompanyID, input)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": created})
}

func (c *AuthController) Login(ctx *fiber.Ctx) error {
	var input LoginInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := c.Service.Login(ctx.UserContext(), input)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "data": result})
}

func (c *AuthController) Profile(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	profile, err := c.Service.GetProfile(ctx.UserContext(), claims.UserID)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "data": profile})
}
