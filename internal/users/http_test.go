package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter map[string]*User

func (f fakeGetter) GetByFirebaseUID(_ context.Context, uid string) (*User, error) {
	if u, ok := f[uid]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func newRouter(uid string, repo Getter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if uid != "" {
			c.Set("firebase_uid", uid)
		}
		c.Next()
	})
	NewHandler(repo).Register(r.Group("/api/v1"))
	return r
}

func TestMe(t *testing.T) {
	email := "ada@example.com"
	repo := fakeGetter{"uid-1": {ID: "1", FirebaseUID: "uid-1", Email: &email}}

	t.Run("returns the signed in user", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newRouter("uid-1", repo).ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/me", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var body struct {
			OK   bool `json:"ok"`
			User User `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.True(t, body.OK)
		assert.Equal(t, "uid-1", body.User.FirebaseUID)
		require.NotNil(t, body.User.Email)
		assert.Equal(t, email, *body.User.Email)
	})

	t.Run("anonymous", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newRouter("", repo).ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newRouter("uid-2", repo).ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/me", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
