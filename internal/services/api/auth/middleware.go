package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/snapfeed/snapfeed/internal/services/api/httpx"
)

const ctxUserIDKey = "authUserID"

// Middleware rejects requests without a valid bearer token and stashes
// the caller's user id in the gin context.
func Middleware(parse func(token string) (int64, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			httpx.Error(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		uid, err := parse(token)
		if err != nil {
			httpx.Error(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		c.Set(ctxUserIDKey, uid)
		c.Next()
	}
}

// UserID reads the id put there by Middleware. Zero means the route
// was wired without it, which is a programming error.
func UserID(c *gin.Context) int64 {
	id, _ := c.Get(ctxUserIDKey)
	uid, _ := id.(int64)
	return uid
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
