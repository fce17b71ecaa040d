package api

import (
	"group_ledger/internal/events"     // Write event fan-out
	"group_ledger/internal/middleware" // Auth gate and request logging
	"group_ledger/internal/store"      // Data access layer

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// NewRouter wires the health check and the token-protected /api routes
func NewRouter(st *store.Store, pub events.Publisher, apiToken string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.GET("/health", HealthHandler()) // Health check, no token required

	// Data routes (protected by the shared secret)
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.TokenAuthMiddleware(apiToken))
	apiGroup.GET("/transactions", ListTransactionsHandler(st))        // List transactions
	apiGroup.POST("/transactions", CreateTransactionHandler(st, pub)) // Create transaction
	apiGroup.GET("/messages", ListMessagesHandler(st))                // List messages
	apiGroup.POST("/messages", CreateMessageHandler(st, pub))         // Create message
	apiGroup.DELETE("/messages/:id", DeleteMessageHandler(st, pub))   // Delete message
	return r
}

// publish sends e and logs a failure without affecting the response
func publish(c *gin.Context, pub events.Publisher, e events.Event) {
	if err := pub.Publish(c.Request.Context(), e); err != nil {
		logrus.WithFields(logrus.Fields{
			"type":       e.Type,
			"group_name": e.GroupName,
			"error":      err.Error(),
		}).Warn("Failed to publish event")
	}
}
