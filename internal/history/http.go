package history

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/listly/listly-backend/internal/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts GET /history.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/history", h.list)
}

func (h *Handler) list(c *gin.Context) {
	userID := auth.UserFirebaseUID(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "limit must be a number"})
			return
		}
		limit = n
	}

	entries, err := h.svc.List(c.Request.Context(), userID, Filter{Kind: c.Query("kind"), Limit: limit})
	if err != nil {
		if errors.Is(err, ErrInvalidKind) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to list history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "history": entries})
}
