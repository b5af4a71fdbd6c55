package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Getter interface {
	GetByFirebaseUID(ctx context.Context, firebaseUID string) (*User, error)
}

type Handler struct {
	repo Getter
}

func NewHandler(repo Getter) *Handler {
	return &Handler{repo: repo}
}

// Register mounts GET /me. The firebase uid is read from the gin context.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

func (h *Handler) me(c *gin.Context) {
	uid := strings.TrimSpace(c.GetString("firebase_uid"))
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "please sign in"})
		return
	}

	u, err := h.repo.GetByFirebaseUID(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "user": u, "is_authenticated": true})
}
