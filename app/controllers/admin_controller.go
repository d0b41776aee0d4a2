package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/IdentitySync/app/repository"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/mail"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/statistics"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/usercontext"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/verification"
)

// AdminController handles admin-only endpoints outside the collection API
type AdminController struct {
	repos    *repository.Repositories
	stats    *statistics.Collector
	verifier *verification.Service
}

func NewAdminController(repos *repository.Repositories, stats *statistics.Collector, verifier *verification.Service) *AdminController {
	return &AdminController{
		repos:    repos,
		stats:    stats,
		verifier: verifier,
	}
}

// HandleMe returns the logged-in administrator.
func (ac *AdminController) HandleMe(c *fiber.Ctx) error {
	principal := usercontext.Get(c)
	admin, err := ac.repos.Admin.GetByID(c.UserContext(), principal.AdminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Admin not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load admin")
	}
	return c.JSON(fiber.Map{"user": admin})
}

// HandleStats returns per-collection counts and webhook delivery counters.
func (ac *AdminController) HandleStats(c *fiber.Ctx) error {
	data, err := ac.stats.Collect(c.UserContext())
	if err != nil {
		log.Errorw("collecting statistics failed", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to collect statistics")
	}
	return c.JSON(data)
}

// HandleIssueVerification mails a fresh verification link to a user.
func (ac *AdminController) HandleIssueVerification(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid user id")
	}

	_, err := ac.verifier.Issue(c.UserContext(), id)
	switch {
	case err == nil:
		log.Infow("verification link issued", "userId", id, "adminId", usercontext.Get(c).AdminID)
		return c.JSON(fiber.Map{"sent": true, "expires_in": verification.TokenTTL.String()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
	case errors.Is(err, verification.ErrAlreadyVerified):
		return jsonError(c, fiber.StatusConflict, "already_verified", "Email address is already verified")
	case errors.Is(err, mail.ErrNotConfigured):
		return jsonError(c, fiber.StatusServiceUnavailable, "mail_unavailable", "Mail delivery is not configured")
	default:
		log.Errorw("issuing verification link failed", "userId", id, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to send verification email")
	}
}
