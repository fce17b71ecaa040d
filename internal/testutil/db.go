// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"group_ledger/internal/config"
	"group_ledger/internal/db"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a file-backed SQLite pool with the schema applied.
// The pool is drained when the test finishes.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(SQLiteConfig(t))
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(context.Background(), gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

// SQLiteConfig returns a configuration pointing at a fresh database in t.TempDir
func SQLiteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DBDriver:       "sqlite",
		DatabaseURL:    filepath.Join(t.TempDir(), "test.db"),
		DBMaxOpenConns: 1,
		DBMaxIdleConns: 1,
		DBConnLifetime: time.Hour,
		APIToken:       "test-secret",
	}
}
