package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/listly/listly-backend/internal/users"
)

// UserEnsurer upserts the authenticated user and returns its database id.
type UserEnsurer interface {
	EnsureUser(ctx context.Context, u users.UpsertUser) (string, error)
}

// RequireUser rejects anonymous requests and makes sure the user row exists.
func RequireUser(ensurer UserEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		fuid := UserFirebaseUID(c)
		if fuid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "please sign in"})
			c.Abort()
			return
		}

		if ensurer != nil {
			uid, err := ensurer.EnsureUser(c.Request.Context(), users.UpsertUser{
				FirebaseUID: fuid,
				Email:       UserEmail(c),
				DisplayName: c.GetString(CtxDisplayName),
			})
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure user: " + err.Error()})
				c.Abort()
				return
			}
			c.Set(CtxUserDBID, uid)
		}

		c.Next()
	}
}
