package api

import (
	"group_ledger/internal/domain" // Importing domain models
	"group_ledger/internal/events" // Write event fan-out
	"group_ledger/internal/store"  // Data access layer
	"net/http"                     // HTTP status codes

	"github.com/gin-gonic/gin"         // Gin web framework
	"github.com/gin-gonic/gin/binding" // Cached body binding
	"github.com/sirupsen/logrus"       // Logging library
)

// CreateTransactionRequest represents a new transaction. Pointers tell a
// missing number apart from zero, so amount 0 is accepted.
type CreateTransactionRequest struct {
	ItemID    *int64 `json:"item_id" binding:"required"`    // Linked item identifier
	Item      string `json:"item" binding:"required"`       // Item label
	User      string `json:"user" binding:"required"`       // Acting user label
	Amount    *int64 `json:"amount" binding:"required"`     // Signed amount
	GroupName string `json:"group_name" binding:"required"` // Partition label
}

// ListTransactionsHandler returns transactions newest first, optionally for one group
func ListTransactionsHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := listParams(c, defaultTransactionsLimit)
		txs, err := st.ListTransactions(c.Request.Context(), p)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"group_name": p.GroupName,
				"error":      err.Error(),
			}).Error("Failed to fetch transactions")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		c.JSON(http.StatusOK, txs)
	}
}

// CreateTransactionHandler stores a transaction and returns it with its id and timestamp
func CreateTransactionHandler(st *store.Store, pub events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTransactionRequest
		// Validate request; the auth gate may already have read the body
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: item_id, item, user, amount, group_name"})
			return
		}
		t := domain.Transaction{
			ItemID:    *req.ItemID,
			Item:      req.Item,
			User:      req.User,
			Amount:    *req.Amount,
			GroupName: req.GroupName,
		}
		if err := st.CreateTransaction(c.Request.Context(), &t); err != nil {
			logrus.WithFields(logrus.Fields{
				"group_name": req.GroupName, // Partition
				"item_id":    t.ItemID,      // Linked item
				"error":      err.Error(),   // Error message
			}).Error("Failed to create transaction")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transaction"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"id":         t.ID,
			"group_name": t.GroupName,
			"item_id":    t.ItemID,
			"user":       t.User,
			"amount":     t.Amount,
		}).Info("Transaction created")
		publish(c, pub, events.Event{Type: events.TransactionCreated, GroupName: t.GroupName, Data: t})
		c.JSON(http.StatusCreated, t)
	}
}
