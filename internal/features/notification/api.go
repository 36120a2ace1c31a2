package notification

import (
	"go-expense/internal/common/api"
	"go-expense/internal/config"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type NotificationApi struct {
	controller *NotificationController
	config     *config.Config
}

func NewNotificationApi(controller *NotificationController, config *config.Config) api.Route {
	return &NotificationApi{
		controller: controller,
		config:     config,
	}
}

func (h *NotificationApi) Setup(app *fiber.App) {
	group := app.Group("/api/notifications", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.ListNotifications)
	group.Get("/unread-count", h.controller.UnreadCount)
	group.Put("/:id/read", h.controller.MarkRead)
	group.Put("/read-all", h.controller.MarkAllRead)
}
