package httptransport

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionID reads the client's session id from the request header, issuing a
// new one when absent. The id is always echoed back so clients can persist
// it.
func SessionID(c *gin.Context) string {
	id := c.GetHeader(SessionHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(SessionHeader, id)
	return id
}
