package router

import (
	"github.com/rahulmehra-dev/GigLedger/app/controllers"
	"github.com/rahulmehra-dev/GigLedger/app/repository"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/database"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Initialize the repository singletons used by middleware and controllers.
	repository.InitializeFactory(database.GetDB())

	// The processor authenticates via signature, not API key, so the webhook
	// stays outside the authenticated API group. No rate limiter here either:
	// throttling retries of an at-least-once sender only delays settlement.
	app.Post("/payments/webhook", controllers.HandlePaymentWebhook)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
