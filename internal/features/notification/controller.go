package notification

import (
	"go-expense/internal/common/apperr"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type NotificationController struct {
	Service NotificationService
}

func NewNotificationController(service NotificationService) *NotificationController {
	return &NotificationController{Service: service}
}

func (c *NotificationController) ListNotifications(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	notifications, err := c.Service.List(ctx.UserContext(), claims.UserID,
		ctx.QueryBool("unread", false), int64(ctx.QueryInt("limit", 50)))
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "data": notifications})
}

func (c *NotificationController) UnreadCount(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	count, err := c.Service.UnreadCount(ctx.UserContext(), claims.UserID)
	if err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "data": fiber.Map{"unread": count}})
}

func (c *NotificationController) MarkRead(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	if err := c.Service.MarkRead(ctx.UserContext(), claims.UserID, ctx.Params("id")); err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "message": "Notification marked as read"})
}

func (c *NotificationController) MarkAllRead(ctx *fiber.Ctx) error {
	claims, _ := middleware.Claims(ctx)

	if err := c.Service.MarkAllRead(ctx.UserContext(), claims.UserID); err != nil {
		return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true, "message": "All notifications marked as read"})
}
