package middleware

import (
	"crypto/subtle" // Constant-time comparison
	"net/http"      // HTTP status codes
	"strings"       // String manipulation

	"github.com/gin-gonic/gin"         // Gin web framework
	"github.com/gin-gonic/gin/binding" // Body binding that keeps the body readable
	"github.com/sirupsen/logrus"       // Logrus for structured logging
)

// tokenBody is the part of a JSON body the gate looks at
type tokenBody struct {
	Token string `json:"token"` // Shared secret sent in the body
}

// TokenAuthMiddleware rejects requests whose credential does not equal secret
func TokenAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c) // Find the credential in header, query or body
		// An empty credential never matches, even against an empty secret
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			logrus.WithFields(logrus.Fields{
				"method":    c.Request.Method,
				"path":      c.Request.URL.Path,
				"client_ip": c.ClientIP(),
				"present":   token != "",
			}).Warn("Rejected request with missing or invalid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next() // Proceed to the next handler
	}
}

// ExtractToken returns the first non-empty credential from the Authorization
// header, the token query parameter, then the token field of a JSON body.
func ExtractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")) // Bearer prefix is optional
	}
	if token := c.Query("token"); token != "" {
		return token
	}
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return ""
	}
	var body tokenBody
	// ShouldBindBodyWith caches the raw body so handlers can bind it again
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		return ""
	}
	return body.Token
}
