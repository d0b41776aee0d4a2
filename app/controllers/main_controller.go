package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/IdentitySync/internal/pkg/cache"
)

// HealthController reports whether the process can reach its backends.
type HealthController struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewHealthController accepts a nil cache when Redis is not configured.
func NewHealthController(db *gorm.DB, c *cache.Cache) *HealthController {
	return &HealthController{db: db, cache: c}
}

func (h *HealthController) HandleHealth(c *fiber.Ctx) error {
	ctx := c.UserContext()
	status := fiber.StatusOK
	body := fiber.Map{"status": "ok", "database": "ok", "cache": "disabled"}

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		log.Errorw("health check: database unreachable", "error", err)
		status = fiber.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = "unreachable"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			log.Warnw("health check: cache unreachable", "error", err)
			body["cache"] = "unreachable"
		} else {
			body["cache"] = "ok"
		}
	}

	return c.Status(status).JSON(body)
}
