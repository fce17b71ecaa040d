package db

import (
	"context"                      // Context for schema statements
	"fmt"                          // Error wrapping
	"group_ledger/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"
	"gorm.io/gorm" // GORM ORM library
)

// schemaIndexes lists the indexes ensured for each model, by the names used in the model tags
var schemaIndexes = []struct {
	model   any
	indexes []string
}{
	{&domain.Message{}, []string{"idx_messages_group_created", "idx_messages_created"}},
	{&domain.Transaction{}, []string{
		"idx_transactions_group_created",
		"idx_transactions_created",
		"idx_transactions_item_id",
		"idx_transactions_user",
	}},
}

// EnsureSchema creates the tables and indexes that are missing and leaves existing ones alone.
// Running it again is a no-op.
func EnsureSchema(ctx context.Context, gdb *gorm.DB) error {
	m := gdb.WithContext(ctx).Migrator()
	for _, s := range schemaIndexes {
		if !m.HasTable(s.model) {
			// CreateTable also creates the indexes declared on the model
			if err := m.CreateTable(s.model); err != nil {
				return fmt.Errorf("create table for %T: %w", s.model, err)
			}
			logrus.WithField("model", fmt.Sprintf("%T", s.model)).Info("Table created")
		}
		for _, name := range s.indexes {
			if m.HasIndex(s.model, name) {
				continue
			}
			if err := m.CreateIndex(s.model, name); err != nil {
				return fmt.Errorf("create index %s: %w", name, err)
			}
			logrus.WithField("index", name).Info("Index created")
		}
	}
	return nil
}

// Migrate probes the connection and ensures the schema, exiting on failure
func Migrate(ctx context.Context, gdb *gorm.DB) {
	if err := Ping(ctx, gdb); err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	if err := EnsureSchema(ctx, gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	logrus.Info("Migration completed.") // Log successful migration
}
