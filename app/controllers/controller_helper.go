package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// jsonError writes the error body used across the admin surface.
func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

// emptyStatus answers with a status code and no body. fiber's SendStatus
// would fill in the status text.
func emptyStatus(c *fiber.Ctx, status int) error {
	c.Status(status)
	return c.Send(nil)
}

// parseID reads a positive numeric :id route parameter.
func parseID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
