package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookie carries the explorer session between requests
	SessionCookie = "genexplorer_session"
	// SessionHeader lets API clients pick a session explicitly
	SessionHeader = "X-Session-ID"
	// SessionKey is the gin context key holding the session ID
	SessionKey = "session_id"
)

// EnsureSession resolves the caller's session ID from the header or cookie,
// issuing a new one when neither is present
func EnsureSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if id == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				id = cookie
			}
		}
		if id == "" {
			id = uuid.NewString()
			c.SetCookie(SessionCookie, id, 0, "/", "", false, true)
		}
		c.Set(SessionKey, id)
		c.Header(SessionHeader, id)
		c.Next()
	}
}

// SessionID returns the session resolved by EnsureSession
func SessionID(c *gin.Context) string {
	return c.GetString(SessionKey)
}
