package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie identifies the browsing session. Cart and auth shadow
// documents are keyed by its value; it is issued lazily on first contact.
const SessionCookie = "outlaw_sid"

const sessionIDKey = "session_id"

const sessionCookieMaxAge = int(30 * 24 * time.Hour / time.Second)

// EnsureSession guarantees every request carries a session id.
func EnsureSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)
		if err != nil || sid == "" {
			sid = uuid.NewString()
			c.SetCookie(SessionCookie, sid, sessionCookieMaxAge, "/", "", false, true)
		}
		c.Set(sessionIDKey, sid)
		c.Next()
	}
}

// SessionID returns the request's session id set by EnsureSession.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
