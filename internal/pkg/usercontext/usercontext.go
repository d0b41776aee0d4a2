package usercontext

import "github.com/gofiber/fiber/v2"

// Principal is the caller of a request as seen by the access policy.
type Principal struct {
	AdminID uint   `json:"admin_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Anonymous is the principal of unauthenticated requests.
var Anonymous = Principal{}

// Get retrieves the principal from the fiber context.
// Returns Anonymous if none is set.
func Get(c *fiber.Ctx) Principal {
	if p, ok := c.Locals(KeyPrincipal).(Principal); ok {
		return p
	}
	return Anonymous
}

// Set stores the principal for the rest of the request.
func Set(c *fiber.Ctx, p Principal) {
	c.Locals(KeyPrincipal, p)
}

// IsAdmin checks if the current caller is an authenticated administrator
func IsAdmin(c *fiber.Ctx) bool {
	return Get(c).IsAdmin
}
