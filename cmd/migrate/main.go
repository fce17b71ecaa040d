package main

import (
	"context"                      // Context for schema statements
	"group_ledger/internal/config" // Custom import path (Config)
	"group_ledger/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus"
)

// Main entry point for migration
func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	cfg := config.LoadConfig() // Load configuration
	// Only the database settings matter here, API_TOKEN is not needed
	if cfg.DatabaseURL == "" {
		logrus.Fatal("DATABASE_URL is required")
	}
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to open DB: %v", err)
	}
	defer db.Close(gdb)
	db.Migrate(context.Background(), gdb)
}
