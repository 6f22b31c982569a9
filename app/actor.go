package app

import (
	"github.com/gin-gonic/gin"
)

// ActorHeader carries the identity of the field worker issuing the request.
// Authentication is handled upstream; here the header only attributes audit
// entries and document updates.
const ActorHeader = "X-User-ID"

func ActorID(withDefault string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(ActorHeader)
		if id == "" {
			id = withDefault
		}
		c.Set("userID", id)
		c.Next()
	}
}
