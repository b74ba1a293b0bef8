package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rahulmehra-dev/GigLedger/internal/pkg/database"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/env"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/notifications"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/payments"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/usercontext"
)

const webhookSignatureHeader = "X-Webhook-Signature"

// HandlePaymentWebhook receives asynchronous status events from the payment
// processor. The sequence is strict: verify signature, append audit entry,
// apply transition, close audit entry. Anything the processor should retry
// answers 5xx; everything else acknowledges with 200 so retries stop.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get(webhookSignatureHeader))
	secret := env.GetEnv("PAYMENT_WEBHOOK_SECRET", "")

	if !payments.VerifyWebhookSignature(rawBody, signature, secret) {
		// Rejected attempts are kept out of the audit table on purpose: a
		// forged body must not be able to poison the duplicate detection for
		// the genuine delivery of the same order/event pair.
		log.Printf("rejected payment webhook from %s: invalid signature", c.IP())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "error": "invalid_signature"})
	}

	payload, err := payments.ParseWebhookPayload(rawBody)
	if err != nil {
		log.Printf("rejected payment webhook from %s: %v", c.IP(), err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "error": "invalid_payload"})
	}

	eventType := strings.TrimSpace(payload.EventType)
	if eventType == "" {
		eventType = strings.TrimSpace(c.Get("X-Webhook-Event"))
	}
	orderID := payload.ResolveOrderID()

	db := database.GetDB()
	svc := payments.NewServiceFromDB(db, notifications.NewService(db))
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Any storage failure answers 5xx so the processor delivers again; the
	// service reprocesses redeliveries whose first attempt failed.
	result, err := svc.ProcessWebhook(ctx, payments.WebhookEventInput{
		ProcessorOrderID: orderID,
		EventType:        eventType,
		RawPayload:       string(rawBody),
		SignatureValid:   true,
	}, rawBody)
	if err != nil {
		log.Printf("webhook processing failed for order %s event %s: %v", orderID, eventType, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "error": "event_processing_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success", "result": result.Outcome})
}

// HandleCreatePaymentLink creates a pending payment and returns the hosted
// payment link for the client to complete.
func HandleCreatePaymentLink(c *fiber.Ctx) error {
	var in payments.CreatePaymentInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := validate.Struct(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	db := database.GetDB()
	svc := payments.NewServiceFromDB(db, notifications.NewService(db))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	p, err := svc.CreatePayment(ctx, in)
	if err != nil {
		log.Printf("payment creation failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "payment_link_failed", "message": "Could not create payment link"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order_id":     p.ProcessorOrderID,
		"payment_link": p.PaymentLink,
		"payment":      p,
	})
}

// HandleGetPayment returns a payment by local id. Freelancers only see their
// own payments; admins see everything.
func HandleGetPayment(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	db := database.GetDB()
	svc := payments.NewServiceFromDB(db, notifications.NewService(db))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p, err := svc.GetPayment(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsAdmin && p.FreelancerID != userCtx.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	return c.Status(fiber.StatusOK).JSON(p)
}
