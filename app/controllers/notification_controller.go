package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rahulmehra-dev/GigLedger/app/repository"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/usercontext"
)

// HandleListNotifications returns the calling user's notifications.
func HandleListNotifications(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	offset, limit := parsePagination(c)

	repo := repository.GetGlobalFactory().GetNotificationRepository()
	notifications, err := repo.ListByUser(userCtx.UserID, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	unread, err := repo.CountUnread(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// HandleMarkNotificationRead marks one of the calling user's notifications
// as read.
func HandleMarkNotificationRead(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	repo := repository.GetGlobalFactory().GetNotificationRepository()
	if err := repo.MarkRead(id, userCtx.UserID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
