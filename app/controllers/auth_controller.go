package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/IdentitySync/app/repository"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/security"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/verification"
)

// AuthController serves admin login and the email verification link.
type AuthController struct {
	admins    repository.AdminRepository
	verifier  *verification.Service
	jwtSecret string
	tokenTTL  time.Duration
	signInURL string
}

func NewAuthController(admins repository.AdminRepository, verifier *verification.Service, jwtSecret string, tokenTTL time.Duration, signInURL string) *AuthController {
	return &AuthController{
		admins:    admins,
		verifier:  verifier,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		signInURL: signInURL,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleAdminLogin exchanges admin credentials for a bearer token.
func (a *AuthController) HandleAdminLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validator.New().Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}
	if a.jwtSecret == "" {
		log.Errorw("admin login attempted without ADMIN_JWT_SECRET")
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Admin login is not configured")
	}

	// notice: login failures are never detailed to the caller
	admin, err := a.admins.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorw("admin lookup failed", "error", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load admin")
		}
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Invalid credentials")
	}
	if !admin.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Invalid credentials")
	}

	token, err := security.GenerateAdminToken(admin.ID, admin.Email, a.tokenTTL, a.jwtSecret)
	if err != nil {
		log.Errorw("issuing admin token failed", "adminId", admin.ID, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to issue token")
	}

	log.Infow("admin logged in", "adminId", admin.ID)
	return c.JSON(fiber.Map{
		"token": token,
		"exp":   time.Now().Add(a.tokenTTL).Unix(),
		"user":  admin,
	})
}

// HandleVerifyEmail consumes a verification link. The caller always lands on
// the sign-in page; failures are only logged.
func (a *AuthController) HandleVerifyEmail(c *fiber.Ctx) error {
	destination := verification.ResolveSignInURL(c.BaseURL()+c.OriginalURL(), a.signInURL)

	if err := a.verifier.Confirm(c.UserContext(), c.Query("token"), c.Query("email")); err != nil {
		if errors.Is(err, verification.ErrInvalidLink) {
			log.Infow("verification link rejected", "error", err)
		} else {
			log.Errorw("email verification failed", "error", err)
		}
	}
	return c.Redirect(destination, fiber.StatusSeeOther)
}
