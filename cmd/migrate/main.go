package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/ManuelReschke/IdentitySync/internal/pkg/config"
)

const sourceURL = "file://migrations"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Loading config failed: %v", err)
	}
	dbURL, err := databaseURL(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("Connecting to database: %s@%s:%s/%s",
		cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)

	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		log.Fatalf("Initializing migrations failed: %v", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Printf("Closing migration resources failed: %v, %v", sourceErr, dbErr)
		}
	}()

	switch command {
	case "up":
		err := m.Up()
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			log.Println("No change: database is up to date")
		case err != nil:
			log.Fatalf("Running migrations failed: %v", err)
		default:
			log.Println("Migrations applied")
		}

	case "down":
		if err := m.Steps(-1); err != nil {
			log.Fatalf("Rolling back the last migration failed: %v", err)
		}
		log.Println("Last migration rolled back")

	case "goto":
		if len(os.Args) < 3 {
			log.Fatalf("Please pass a version number")
		}
		version, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			log.Fatalf("Invalid version number: %v", err)
		}
		err = m.Migrate(uint(version))
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			log.Printf("No change: database is already at version %d", version)
		case err != nil:
			log.Fatalf("Migrating to version %d failed: %v", version, err)
		default:
			log.Printf("Migrated to version %d", version)
		}

	case "status":
		version, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			log.Println("No migrations have been applied yet")
		case err != nil:
			log.Fatalf("Reading migration version failed: %v", err)
		default:
			dirtyStatus := ""
			if dirty {
				dirtyStatus = " (dirty)"
			}
			log.Printf("Current migration version: %d%s", version, dirtyStatus)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

// databaseURL builds the golang-migrate URL. The SQL files target MySQL;
// other drivers are migrated by the server on startup.
func databaseURL(db config.Database) (string, error) {
	if db.Driver != "mysql" {
		return "", fmt.Errorf("SQL migrations are MySQL only; DB_DRIVER=%s is migrated automatically by 'identitysync serve'", db.Driver)
	}
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true&parseTime=true",
		db.User, db.Password, db.Host, db.Port, db.Name), nil
}

func printUsage() {
	fmt.Println("Usage: go run ./cmd/migrate [command]")
	fmt.Println("Commands:")
	fmt.Println("  up     - apply all pending migrations")
	fmt.Println("  down   - roll back the last migration")
	fmt.Println("  goto N - migrate to version N")
	fmt.Println("  status - show the current migration version")
}
