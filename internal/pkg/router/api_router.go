package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/IdentitySync/internal/pkg/access"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/constants"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/middleware"
)

type ApiRouter struct {
	h Handlers
}

func (r ApiRouter) InstallRouter(app *fiber.App) {
	// Provider webhooks bypass the access policy; the signature is the gate.
	app.Post(constants.RouteClerkWebhook, r.h.Webhook.HandleReceive)
	app.Get(constants.RouteClerkWebhook, r.h.Webhook.HandleStatus)
	app.Get(constants.RouteVerifyEmail, r.h.Auth.HandleVerifyEmail)

	api := app.Group("/api")

	loginLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "too_many_requests",
				"message": "Too many login attempts",
			})
		},
	})
	api.Post("/admins/login", loginLimiter, r.h.Auth.HandleAdminLogin)
	api.Get("/admins/me", middleware.RequireAdmin, r.h.Admin.HandleMe)

	api.Get("/admin/stats", middleware.RequireAdmin, r.h.Admin.HandleStats)
	api.Post("/users/:id/verification", access.Enforce(access.CollectionUsers, access.OpUpdate), r.h.Admin.HandleIssueVerification)

	// Generic collection API. Specific routes above are registered first so
	// they win over the :collection parameter.
	policy := access.Enforce("", "")
	api.Get("/:collection", policy, r.h.Collections.HandleList)
	api.Post("/:collection", policy, r.h.Collections.HandleCreate)
	api.Get("/:collection/:id", policy, r.h.Collections.HandleGet)
	api.Patch("/:collection/:id", policy, r.h.Collections.HandleUpdate)
	api.Delete("/:collection/:id", policy, r.h.Collections.HandleDelete)
}

func NewApiRouter(h Handlers) *ApiRouter {
	return &ApiRouter{h: h}
}
