package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/IdentitySync/app/repository"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/security"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/usercontext"
)

// PrincipalMiddleware resolves the caller for every request. A valid admin
// bearer token whose admin still exists yields an admin principal; anything
// else is anonymous. It never rejects a request itself.
func PrincipalMiddleware(secret string, admins repository.AdminRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		usercontext.Set(c, usercontext.Anonymous)

		token := extractBearerToken(c)
		if token == "" || secret == "" {
			return c.Next()
		}

		claims, err := security.VerifyAdminToken(token, secret)
		if err != nil {
			log.Debugw("admin token rejected", "error", err)
			return c.Next()
		}

		admin, err := admins.GetByID(c.UserContext(), claims.AdminID)
		if err != nil {
			log.Warnw("admin token for unknown admin", "adminId", claims.AdminID, "error", err)
			return c.Next()
		}

		usercontext.Set(c, usercontext.Principal{
			AdminID: admin.ID,
			Email:   admin.Email,
			IsAdmin: true,
		})
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAdmin ensures an authenticated admin; returns JSON 401 otherwise.
func RequireAdmin(c *fiber.Ctx) error {
	if !usercontext.IsAdmin(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "admin login required",
		})
	}
	return c.Next()
}
