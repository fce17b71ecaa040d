package api

import (
	"group_ledger/internal/store" // Store list parameters
	"strconv"                     // String conversion

	"github.com/gin-gonic/gin" // Gin web framework
)

// Default page sizes per collection
const (
	defaultMessagesLimit     = 50
	defaultTransactionsLimit = 100
)

// listParams reads group_name, limit and offset from the query string.
// Missing or invalid numbers fall back to the defaults; limit has no upper bound.
func listParams(c *gin.Context, defaultLimit int) store.ListParams {
	p := store.ListParams{
		GroupName: c.Query("group_name"), // Optional partition filter
		Limit:     defaultLimit,          // Default page size
	}
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			p.Limit = v // Set limit if valid
		}
	}
	if o := c.Query("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			p.Offset = v // Set offset if valid
		}
	}
	return p
}
