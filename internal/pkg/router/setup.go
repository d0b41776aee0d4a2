package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/IdentitySync/app/controllers"
	"github.com/ManuelReschke/IdentitySync/app/repository"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Handlers carries the controllers and the principal dependencies the routes
// are wired to.
type Handlers struct {
	Webhook     *controllers.WebhookController
	Auth        *controllers.AuthController
	Admin       *controllers.AdminController
	Collections *controllers.CollectionController
	Health      *controllers.HealthController
	Admins      repository.AdminRepository
	JWTSecret   string
}

func InstallRouter(app *fiber.App, h Handlers) {
	// HttpRouter installs the principal middleware the API routes depend on,
	// so it has to run first.
	setup(app, NewHttpRouter(h), NewApiRouter(h))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
