package config

import (
	"fmt"
	"strings"
	"time"

	cenv "github.com/caarlos0/env/v10"

	"github.com/ManuelReschke/IdentitySync/internal/pkg/env"
)

// Config is built once at startup and passed by pointer to everything that
// needs it.
type Config struct {
	App      App
	Clerk    Clerk
	Database Database `envPrefix:"DB_"`
	Cache    Cache    `envPrefix:"CACHE_"`
	Admin    Admin    `envPrefix:"ADMIN_"`
	SMTP     SMTP     `envPrefix:"SMTP_"`
}

type App struct {
	Host         string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port         string `env:"APP_PORT" envDefault:"4000"`
	Env          string `env:"APP_ENV" envDefault:"prod"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	PublicDomain string `env:"PUBLIC_DOMAIN" envDefault:""`
	SignInURL    string `env:"SIGN_IN_URL" envDefault:"/sign-in"`
}

type Clerk struct {
	// WebhookSecret may be empty; webhook deliveries then fail with 500.
	WebhookSecret string `env:"CLERK_WEBHOOK_SECRET"`
}

type Database struct {
	Driver   string `env:"DRIVER" envDefault:"mysql"`
	Host     string `env:"HOST" envDefault:"127.0.0.1"`
	Port     string `env:"PORT" envDefault:"3306"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME"`
	// DSN overrides the host/port/user fields when set.
	DSN string `env:"DSN"`
}

type Cache struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
}

type Admin struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"12h"`
	Password  string        `env:"PASSWORD"`
}

type SMTP struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	Sender   string `env:"SENDER"`
}

// Load reads an optional .env file and parses the environment.
func Load() (*Config, error) {
	env.SetupEnvFile()
	return Parse()
}

// Parse builds a Config from the current process environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := cenv.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	switch cfg.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.App.Env == "dev"
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.App.Host + ":" + c.App.Port
}

// WebhookSecretConfigured reports whether webhook deliveries can be verified.
func (c *Config) WebhookSecretConfigured() bool {
	return strings.TrimSpace(c.Clerk.WebhookSecret) != ""
}

// CacheEnabled reports whether a Redis host is configured.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Host != ""
}

// MailEnabled reports whether an SMTP host is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTP.Host != ""
}
