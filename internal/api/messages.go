package api

import (
	"errors"                       // Error matching
	"group_ledger/internal/domain" // Importing domain models
	"group_ledger/internal/events" // Write event fan-out
	"group_ledger/internal/store"  // Data access layer
	"net/http"                     // HTTP status codes
	"strconv"                      // String conversion

	"github.com/gin-gonic/gin"         // Gin web framework
	"github.com/gin-gonic/gin/binding" // Cached body binding
	"github.com/sirupsen/logrus"       // Logging library
)

// CreateMessageRequest represents a new message
type CreateMessageRequest struct {
	Message   string `json:"message" binding:"required"`    // Message body
	Sender    string `json:"sender" binding:"required"`     // Sender label
	GroupName string `json:"group_name" binding:"required"` // Partition label
	ItemID    *int64 `json:"item_id"`                       // Optional linked item; zero is kept
	Amount    *int64 `json:"amount"`                        // Optional amount; zero is kept
}

// ListMessagesHandler returns messages newest first, optionally for one group
func ListMessagesHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := listParams(c, defaultMessagesLimit)
		msgs, err := st.ListMessages(c.Request.Context(), p)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"group_name": p.GroupName,
				"error":      err.Error(),
			}).Error("Failed to fetch messages")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
			return
		}
		c.JSON(http.StatusOK, msgs)
	}
}

// CreateMessageHandler stores a message and returns it with its id and timestamp
func CreateMessageHandler(st *store.Store, pub events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateMessageRequest
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: message, sender, group_name"})
			return
		}
		m := domain.Message{
			Message:   req.Message,
			Sender:    req.Sender,
			ItemID:    req.ItemID,
			Amount:    req.Amount,
			GroupName: req.GroupName,
		}
		if err := st.CreateMessage(c.Request.Context(), &m); err != nil {
			logrus.WithFields(logrus.Fields{
				"group_name": req.GroupName,
				"sender":     req.Sender,
				"error":      err.Error(),
			}).Error("Failed to create message")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create message"})
			return
		}
		publish(c, pub, events.Event{Type: events.MessageCreated, GroupName: m.GroupName, Data: m})
		c.JSON(http.StatusCreated, m)
	}
}

// DeleteMessageHandler removes one message by id, optionally only within group_name
func DeleteMessageHandler(st *store.Store, pub events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message id"})
			return
		}
		groupName := c.Query("group_name") // Optional partition constraint
		err = st.DeleteMessage(c.Request.Context(), uint(id), groupName)
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
			return
		case err != nil:
			logrus.WithFields(logrus.Fields{
				"id":         id,
				"group_name": groupName,
				"error":      err.Error(),
			}).Error("Failed to delete message")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
			return
		}
		logrus.WithFields(logrus.Fields{"id": id, "group_name": groupName}).Info("Message deleted")
		// The row is gone, so the partition is only known when the caller scoped the delete
		if groupName != "" {
			publish(c, pub, events.Event{Type: events.MessageDeleted, GroupName: groupName, Data: gin.H{"id": id}})
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message deleted"})
	}
}
