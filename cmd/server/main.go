package main

import (
	"context"                      // Context for probes and shutdown
	"errors"                       // Error matching
	"group_ledger/internal/api"    // Custom package for API handlers
	"group_ledger/internal/config" // Custom package for configuration
	"group_ledger/internal/db"     // Connection pool and schema
	"group_ledger/internal/events" // Write event fan-out
	"group_ledger/internal/store"  // Data access layer
	"net/http"                     // HTTP server
	"os"                           // Signals
	"os/signal"                    // Signal notification
	"syscall"                      // SIGTERM
	"time"                         // Timeouts

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

const (
	probeTimeout    = 10 * time.Second // Startup connectivity probe and schema setup
	shutdownTimeout = 10 * time.Second // Grace period for in-flight HTTP requests
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	setupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	// Open the pool, probe it and make sure the schema exists before serving
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to open DB: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	if err := db.Ping(ctx, gdb); err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fail fast instead of serving 500s
	}
	if err := db.EnsureSchema(ctx, gdb); err != nil {
		logrus.Fatalf("failed to initialize schema: %v", err)
	}
	cancel()
	logrus.Info("Database ready")

	publisher := newPublisher(cfg)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := api.NewRouter(store.New(gdb), publisher, cfg.APIToken)
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logrus.Info("Server running on " + cfg.AppPort) // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	<-sigCtx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown did not finish cleanly")
	}
	if err := publisher.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close event publisher")
	}
	// Drain the pool last so no handler is left without a connection
	if err := db.Close(gdb); err != nil {
		logrus.WithError(err).Error("Failed to close database pool")
	}
	logrus.Info("Shutdown complete")
}

// setupLogger picks the formatter and level for the environment
func setupLogger(cfg *config.Config) {
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// newPublisher connects to Redis when configured. An unreachable Redis disables
// event fan-out instead of blocking startup.
func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.RedisAddr == "" {
		logrus.Info("REDIS_ADDR not set, event fan-out disabled")
		return events.Nop{}
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	// Test Redis connection
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logrus.WithError(err).Warn("failed to connect to Redis, event fan-out disabled")
		_ = redisClient.Close()
		return events.Nop{}
	}
	logrus.WithField("addr", cfg.RedisAddr).Info("Event fan-out enabled")
	return events.NewRedisPublisher(redisClient, cfg.EventsPrefix)
}
