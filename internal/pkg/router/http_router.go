package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/IdentitySync/internal/pkg/constants"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/middleware"
)

type HttpRouter struct {
	h Handlers
}

func (r HttpRouter) InstallRouter(app *fiber.App) {
	// Resolve the caller once per request; access checks read it from Locals.
	app.Use(middleware.PrincipalMiddleware(r.h.JWTSecret, r.h.Admins))

	app.Get(constants.RouteHealth, r.h.Health.HandleHealth)
}

func NewHttpRouter(h Handlers) *HttpRouter {
	return &HttpRouter{h: h}
}
