package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rahulmehra-dev/GigLedger/internal/pkg/database"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/notifications"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/payout"
)

// HandleListPendingPayouts returns all payout requests awaiting review.
func HandleListPendingPayouts(c *fiber.Ctx) error {
	db := database.GetDB()
	svc := payout.NewServiceFromDB(db, notifications.NewService(db))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reqs, err := svc.ListPending(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"payouts": reqs})
}

// HandleApprovePayout marks a pending payout request as paid.
func HandleApprovePayout(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	db := database.GetDB()
	svc := payout.NewServiceFromDB(db, notifications.NewService(db))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := svc.Approve(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		case errors.Is(err, payout.ErrNotPending):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "not_pending", "payout": req})
		default:
			log.Printf("payout approval failed for request %d: %v", id, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
		}
	}

	return c.Status(fiber.StatusOK).JSON(req)
}

type rejectPayoutBody struct {
	Note string `json:"note" validate:"max=2000"`
}

// HandleRejectPayout marks a pending payout request as rejected and returns
// the earmarked amount to the freelancer's wallet.
func HandleRejectPayout(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	// The note is optional; an empty body is fine.
	var body rejectPayoutBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
		}
	}
	if err := validate.Struct(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	db := database.GetDB()
	svc := payout.NewServiceFromDB(db, notifications.NewService(db))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := svc.Reject(ctx, id, body.Note)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		case errors.Is(err, payout.ErrNotPending):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "not_pending", "payout": req})
		default:
			log.Printf("payout rejection failed for request %d: %v", id, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
		}
	}

	return c.Status(fiber.StatusOK).JSON(req)
}
