package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// OptionalUser sets a firebase uid in context without verifying a token.
// - X-User-Id names the user; without it the request stays anonymous.
// - Use this ONLY for development/testing.
func OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := strings.TrimSpace(c.GetHeader("X-User-Id")); uid != "" {
			c.Set(CtxFirebaseUID, uid)
			if email := strings.TrimSpace(c.GetHeader("X-User-Email")); email != "" {
				c.Set(CtxEmail, email)
			}
			if name := strings.TrimSpace(c.GetHeader("X-User-Name")); name != "" {
				c.Set(CtxDisplayName, name)
			}
		}
		c.Next()
	}
}
