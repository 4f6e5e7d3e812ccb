package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"go-card-bank/logger"
)

//go:embed migrations/sqlite3/*.sql migrations/postgres/*.sql
var embedFiles embed.FS

// Migrate brings the schema up to date using the embedded migrations for
// the given driver.
func Migrate(database *sql.DB, driverName string) error {
	src, err := iofs.New(embedFiles, "migrations/"+driverName)
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	var driver migratedb.Driver
	switch driverName {
	case "sqlite3":
		driver, err = migratesqlite.WithInstance(database, &migratesqlite.Config{})
	case "postgres":
		driver, err = migratepg.WithInstance(database, &migratepg.Config{})
	default:
		return fmt.Errorf("unsupported database driver %q", driverName)
	}
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	logger.Log.Info("Database schema is up to date")
	return nil
}
