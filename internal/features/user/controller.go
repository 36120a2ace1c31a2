package user

import (
	"go-expense/internal/common/apperr"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Service UserService
}

func NewUserController(service UserService) *UserController {
	return &UserController{Service: service}
}

// ListUsers returns every user in the admin's company, grouped by role
func (c *UserController) ListUsers(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	users, err := c.Service.ListCompanyUsers(ctx.UserContext(), claims.CompanyID, claims.UserID)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	managers := make([]User, 0)
	employees := make([]User, 0)
	for _, u := range users {
		switch u.Role {
		case common_models.RoleManager:
			managers = append(managers, u)
		case common_models.RoleEmployee:
			employees = append(employees, u)
		}
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"managers":  managers,
			"employees": employees,
			"total":     len(users),
		},
	})
}

// UpdateRole changes a user's company role
func (c *UserController) UpdateRole(ctx *fiber.Ctx) error {
	var body struct {
		Role common_models.Role `json:"role"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := c.Service.UpdateRole(ctx.UserContext(), ctx.Params("id"), body.Role)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "User role updated to " + string(body.Role),
		"data":    user,
	})
}

// UpdateStatus activates or deactivates a user account
func (c *UserController) UpdateStatus(ctx *fiber.Ctx) error {
	var body struct {
		IsActive bool `json:"isActive"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := c.Service.UpdateStatus(ctx.UserContext(), ctx.Params("id"), body.IsActive)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	message := "User deactivated successfully"
	if body.IsActive {
		message = "User activated successfully"
	}
	return ctx.JSON(fiber.Map{"success": true, "message": message, "data": user})
}
