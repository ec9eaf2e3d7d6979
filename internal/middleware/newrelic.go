package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicAttributes tags the nrgin transaction with the guest and checkout
// session of the request. Must run after nrgin.Middleware and GuestAuth.
func NewRelicAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		txn := nrgin.Transaction(c)
		if txn == nil {
			return
		}

		if guestID := GuestID(c); guestID != "" {
			txn.AddAttribute("guestId", guestID)
		}
		if sessionID := c.Param("id"); sessionID != "" {
			txn.AddAttribute("resourceId", sessionID)
		}

		// Record error if present.
		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
