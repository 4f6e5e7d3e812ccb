package app

import (
	"context"
	"os"

	"go-card-bank/card"
	"go-card-bank/client"
	"go-card-bank/config"
	"go-card-bank/db"
	"go-card-bank/logger"
	"go-card-bank/repository"
	"go-card-bank/service"
)

// Run wires all layers together and drives the interactive session. Any
// failure during initialization is fatal; after that, errors only ever end
// the flow they belong to.
func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	driver := config.AppConfig.Database.Driver
	if err := db.Migrate(database, driver); err != nil {
		logger.Log.Fatalf("Error preparing the database schema: %v", err)
	}

	accountRepo := repository.NewAccountRepository(database, driver)
	issuer := card.NewGenerator(config.AppConfig.Card.BIN, accountRepo)
	ledger := service.NewLedgerService(accountRepo, issuer)

	reader := client.NewInputReader(os.Stdin, os.Stdout)
	shell := client.NewClient(ledger, reader, os.Stdout)
	shell.Run(context.Background())

	logger.Log.Info("Session ended")
}
