package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie = "sessionid"
	sessionMaxAge = 14 * 24 * 3600
)

// SessionKey returns the anonymous session key, or "" if the client has none.
func SessionKey(c *gin.Context) string {
	v, err := c.Cookie(SessionCookie)
	if err != nil || len(v) > 64 {
		return ""
	}
	return v
}

// EnsureSessionKey lazily creates the anonymous session key.
func EnsureSessionKey(c *gin.Context) string {
	if key := SessionKey(c); key != "" {
		return key
	}
	key := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, key, sessionMaxAge, "/", "", false, true)
	// Make the new key visible to later reads within this request.
	c.Request.AddCookie(&http.Cookie{Name: SessionCookie, Value: key})
	return key
}

func ClearSessionKey(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}
