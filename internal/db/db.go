package db

import (
	"context"                      // Context for the connectivity probe
	"fmt"                          // Error wrapping
	"group_ledger/internal/config" // Application configuration
	"net/url"                      // DSN query manipulation
	"strings"                      // DSN inspection

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/driver/postgres"    // PostgreSQL driver for GORM
	"gorm.io/driver/sqlite"      // SQLite driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM logger levels
)

// Open builds a GORM handle for the configured driver and applies pool limits.
// No connection is guaranteed to exist until Ping succeeds.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.DBDriver, SecureDSN(cfg.DBDriver, cfg.DatabaseURL, cfg.IsProd))
	if err != nil {
		return nil, err
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)} // Only slow queries and errors
	if cfg.IsProd {
		gormCfg.Logger = logger.Default.LogMode(logger.Error) // Errors only in production
	}
	gdb, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}
	sqlDB, err := gdb.DB() // Underlying database/sql pool
	if err != nil {
		return nil, fmt.Errorf("get sql pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)    // Bound the pool
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)    // Keep some connections warm
	sqlDB.SetConnMaxLifetime(cfg.DBConnLifetime) // Recycle long-lived connections
	logrus.WithFields(logrus.Fields{
		"driver":         cfg.DBDriver,
		"max_open_conns": cfg.DBMaxOpenConns,
		"max_idle_conns": cfg.DBMaxIdleConns,
		"tls":            cfg.IsProd && cfg.DBDriver != "sqlite",
	}).Info("Database pool configured")
	return gdb, nil
}

// Ping runs the connectivity probe against the pool
func Ping(ctx context.Context, gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close drains the pool: it waits for in-flight queries and refuses new ones
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SecureDSN enables encrypted transport for production DSNs that do not set it already.
// Development DSNs and sqlite paths are returned unchanged.
func SecureDSN(driver, dsn string, isProd bool) string {
	if !isProd {
		return dsn
	}
	switch driver {
	case "postgres":
		if strings.Contains(dsn, "sslmode=") {
			return dsn // Caller chose a mode explicitly
		}
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			u, err := url.Parse(dsn)
			if err != nil {
				return dsn
			}
			q := u.Query()
			q.Set("sslmode", "require") // Encrypt without verifying the server certificate
			u.RawQuery = q.Encode()
			return u.String()
		}
		return strings.TrimSpace(dsn) + " sslmode=require" // key=value form
	case "mysql":
		if strings.Contains(dsn, "tls=") {
			return dsn
		}
		if strings.Contains(dsn, "?") {
			return dsn + "&tls=skip-verify"
		}
		return dsn + "?tls=skip-verify"
	}
	return dsn
}

// dialectorFor maps a driver name to its GORM dialector
func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}
