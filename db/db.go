package db

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"go-card-bank/config"
	"go-card-bank/logger"
)

// Connect opens the configured database and verifies the connection. The
// handle is held for the whole session; a single connection is enough for
// one interactive user and keeps sqlite away from concurrent writers.
func Connect() (*sql.DB, error) {
	cfg := config.AppConfig.Database

	logger.Log.WithFields(logrus.Fields{
		"driver": cfg.Driver,
		"dsn":    cfg.DSN,
	}).Info("Opening database connection")

	database, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to open database connection")
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	database.SetMaxOpenConns(1)

	if err = database.Ping(); err != nil {
		logger.Log.WithError(err).Error("Failed to ping database")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Log.Info("Database connection established successfully")
	return database, nil
}
