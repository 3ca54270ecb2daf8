package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-desk/internal/api/dto"
	"github.com/spec-kit/complaint-desk/internal/notification"
)

// NotificationsHandler exposes the single notification slot.
type NotificationsHandler struct {
	center *notification.Center
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(center *notification.Center) *NotificationsHandler {
	return &NotificationsHandler{center: center}
}

// Current handles GET /notifications/current.
func (h *NotificationsHandler) Current(c *fiber.Ctx) error {
	n, ok := h.center.Current()
	if !ok {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": dto.NewNotificationResponse(n)})
}

// Dismiss handles DELETE /notifications/:id.
func (h *NotificationsHandler) Dismiss(c *fiber.Ctx) error {
	h.center.Dismiss(notification.Handle(c.Params("id")))
	return c.SendStatus(http.StatusNoContent)
}
