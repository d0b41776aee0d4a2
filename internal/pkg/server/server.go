package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"gorm.io/gorm"

	"github.com/ManuelReschke/IdentitySync/app/controllers"
	"github.com/ManuelReschke/IdentitySync/app/repository"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/cache"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/clerksync"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/config"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/database"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/mail"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/router"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/statistics"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/verification"
)

const shutdownTimeout = 10 * time.Second

// Deps are the backends the HTTP application runs on. Cache may be nil.
type Deps struct {
	DB     *gorm.DB
	Cache  *cache.Cache
	Mailer mail.Sender
}

// NewApplication wires repositories, services and controllers into a fiber
// app. It does not listen.
func NewApplication(cfg *config.Config, deps Deps) *fiber.App {
	repos := repository.NewFactory(deps.DB).GetRepositories()

	var webhookCounter *counter.WebhookCounter
	if deps.Cache != nil {
		webhookCounter = counter.NewWebhookCounter(deps.Cache.Client())
	}

	syncer := clerksync.NewService(repos)
	verifier := verification.NewService(repos.User, deps.Mailer, cfg.App.PublicDomain, cfg.App.SignInURL)
	stats := statistics.NewCollector(repos, deps.Cache, webhookCounter)

	app := fiber.New(fiber.Config{
		AppName:           "IdentitySync",
		BodyLimit:         1 << 20,
		EnablePrintRoutes: cfg.IsDev(),
		ErrorHandler:      errorHandler,
	})
	app.Use(requestid.New(), recover.New(), logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	router.InstallRouter(app, router.Handlers{
		Webhook:     controllers.NewWebhookController(cfg.Clerk.WebhookSecret, syncer, repos.WebhookEvent, webhookCounter, stats.Invalidate),
		Auth:        controllers.NewAuthController(repos.Admin, verifier, cfg.Admin.JWTSecret, cfg.Admin.TokenTTL, cfg.App.SignInURL),
		Admin:       controllers.NewAdminController(repos, stats, verifier),
		Collections: controllers.NewCollectionController(repos, stats.Invalidate),
		Health:      controllers.NewHealthController(deps.DB, deps.Cache),
		Admins:      repos.Admin,
		JWTSecret:   cfg.Admin.JWTSecret,
	})

	return app
}

// Run connects the backends, serves until ctx is cancelled and shuts down
// gracefully.
func Run(ctx context.Context, cfg *config.Config) error {
	ConfigureLogging(cfg.App.LogLevel)

	if !cfg.WebhookSecretConfigured() {
		log.Warn("CLERK_WEBHOOK_SECRET is not configured; webhook deliveries will fail")
	}

	db, err := database.SetupDatabase(cfg.Database)
	if err != nil {
		return err
	}

	deps := Deps{DB: db, Mailer: mail.NewSMTPMailer(cfg.SMTP)}
	if cfg.CacheEnabled() {
		deps.Cache = cache.Setup(ctx, cfg.Cache)
		defer deps.Cache.Close()
	}
	if !cfg.MailEnabled() {
		log.Warn("SMTP_HOST is not configured; verification emails cannot be sent")
	}

	app := NewApplication(cfg, deps)

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", cfg.Addr(), "env", cfg.App.Env)
		errCh <- app.Listen(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}

// ConfigureLogging maps LOG_LEVEL onto the fiber logger.
func ConfigureLogging(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		log.SetLevel(log.LevelTrace)
	case "debug":
		log.SetLevel(log.LevelDebug)
	case "warn", "warning":
		log.SetLevel(log.LevelWarn)
	case "error":
		log.SetLevel(log.LevelError)
	default:
		log.SetLevel(log.LevelInfo)
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Errorw("request failed", "path", c.Path(), "error", err)
	}
	message := "Internal server error"
	if fe != nil {
		message = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   strings.ToLower(strings.ReplaceAll(utils.StatusMessage(code), " ", "_")),
		"message": message,
	})
}
