package router

import (
	"github.com/gofiber/fiber/v2"
)

func InstallRouter(app *fiber.App) {
	// HttpRouter installs the unauthenticated surfaces (webhook, health)
	// first; the API router layers key-authenticated routes on top.
	setup(app, NewHttpRouter(), NewApiRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}

// Router is one installable group of routes.
type Router interface {
	InstallRouter(app *fiber.App)
}
