package database

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/config"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

// SetupDatabase connects with retries and migrates the schema. SQLite is
// opened once without retry.
func SetupDatabase(cfg config.Database) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	attempts := maxRetries
	if cfg.Driver == "sqlite" {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		db, err = Open(cfg)
		if err == nil {
			if err = Migrate(db); err != nil {
				return nil, err
			}
			return db, nil
		}

		log.Warnf("Failed to connect to database (try %d/%d): %v", i+1, attempts, err)
		if i < attempts-1 {
			log.Infof("Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	return nil, err
}

// Open connects to the configured driver. Duplicate-key violations are
// translated to gorm.ErrDuplicatedKey.
func Open(cfg config.Database) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger: logger.New(gormWriter{}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	switch cfg.Driver {
	case "mysql", "":
		return gorm.Open(mysql.New(mysql.Config{
			DSN:                       mysqlDSN(cfg),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), gormConfig)
	case "postgres":
		return gorm.Open(postgres.Open(postgresDSN(cfg)), gormConfig)
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "identitysync.db"
		}
		db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// one writer; also keeps in-memory databases on a single connection
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMembership{},
		&models.Subscription{},
		&models.SubscriptionItem{},
		&models.PaymentAttempt{},
		&models.Admin{},
		&models.WebhookEvent{},
	)
}

// gormWriter routes GORM's logger through the application logger.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

func mysqlDSN(cfg config.Database) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name,
	)
}

func postgresDSN(cfg config.Database) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	port := cfg.Port
	if port == "" || port == "3306" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, port,
	)
}
