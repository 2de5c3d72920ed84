package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const customerIDKey = "customerID"

// CustomerAuth trusts the identity established by the edge: the customer id
// arrives in the X-Customer-ID header. Session mechanics live outside this
// service.
func CustomerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.GetHeader("X-Customer-ID"), 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(customerIDKey, id)
		c.Next()
	}
}

// AdminOnly gates admin-capable operations such as order status updates.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-User-Role") != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func customerID(c *gin.Context) uint64 {
	return c.GetUint64(customerIDKey)
}
