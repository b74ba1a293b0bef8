package router

import (
	"github.com/rahulmehra-dev/GigLedger/app/controllers"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())

	v1 := api.Group("/v1", middleware.APIKeyAuthMiddleware())

	// Payments
	v1.Post("/payments/links", controllers.HandleCreatePaymentLink)
	v1.Get("/payments/:id", controllers.HandleGetPayment)

	// Wallet & payouts (freelancer-facing)
	freelancer := v1.Group("", middleware.RequireFreelancerMiddleware())
	freelancer.Get("/wallet", controllers.HandleGetWallet)
	freelancer.Post("/payouts", controllers.HandleRequestPayout)
	freelancer.Get("/payouts", controllers.HandleListPayouts)

	// Notifications
	v1.Get("/notifications", controllers.HandleListNotifications)
	v1.Post("/notifications/:id/read", controllers.HandleMarkNotificationRead)

	// Admin
	admin := v1.Group("/admin", middleware.RequireAdminMiddleware())
	admin.Get("/payouts/pending", controllers.HandleListPendingPayouts)
	admin.Post("/payouts/:id/approve", controllers.HandleApprovePayout)
	admin.Post("/payouts/:id/reject", controllers.HandleRejectPayout)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
