package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHeader identifies guest shoppers. The middleware mints a session id
// when the client did not send one and always echoes it back so the client can
// persist it.
const SessionHeader = "X-Session-Id"

const sessionKey = "sessionID"

func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		c.Set(sessionKey, sessionID)
		c.Header(SessionHeader, sessionID)
		c.Next()
	}
}

// SessionID returns the guest session id assigned by Session.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
