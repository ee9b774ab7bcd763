package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicAttributes copies the route's resource ID onto the New Relic
// transaction started by nrgin and reports handler errors to it. It must be
// registered after nrgin.Middleware.
func NewRelicAttributes(attribute string) gin.HandlerFunc {
	return func(c *gin.Context) {
		txn := nrgin.Transaction(c)
		if txn == nil {
			c.Next()
			return
		}

		if id := c.Param("id"); id != "" {
			txn.AddAttribute(attribute, id)
		}

		c.Next()

		// Record error if present.
		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
