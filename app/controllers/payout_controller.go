package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/rahulmehra-dev/GigLedger/internal/pkg/database"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/notifications"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/payout"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/usercontext"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/wallet"
)

type payoutRequestBody struct {
	Amount      decimal.Decimal `json:"amount"`
	BankDetails string          `json:"bank_details" validate:"required,max=2000"`
}

// HandleRequestPayout records a withdrawal request for the calling
// freelancer. The wallet is debited immediately (earmarking); an insufficient
// balance against the reserve floor is a definitive rejection, not a retry.
func HandleRequestPayout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var body payoutRequestBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := validate.Struct(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	db := database.GetDB()
	svc := payout.NewServiceFromDB(db, notifications.NewService(db))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := svc.RequestPayout(ctx, userCtx.UserID, body.Amount, body.BankDetails)
	if err != nil {
		if errors.Is(err, wallet.ErrInsufficientFunds) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "insufficient_funds", "message": err.Error()})
		}
		log.Printf("payout request failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.Status(fiber.StatusCreated).JSON(req)
}

// HandleListPayouts returns the calling freelancer's payout history.
func HandleListPayouts(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	offset, limit := parsePagination(c)

	db := database.GetDB()
	svc := payout.NewServiceFromDB(db, notifications.NewService(db))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reqs, err := svc.ListByFreelancer(ctx, userCtx.UserID, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"payouts": reqs})
}

// HandleGetWallet returns the calling freelancer's wallet balances along with
// the reserve floor so the dashboard can show withdrawable funds.
func HandleGetWallet(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	svc := wallet.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	w, err := svc.GetWallet(ctx, userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"wallet":        w,
		"reserve_floor": svc.ReserveFloor(),
	})
}
