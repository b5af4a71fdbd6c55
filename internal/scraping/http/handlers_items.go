package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/listly/listly-backend/internal/auth"
	"github.com/listly/listly-backend/internal/logging"
	projectdomain "github.com/listly/listly-backend/internal/projects/domain"
	"github.com/listly/listly-backend/internal/scraping/domain"
)

// ListItems returns a project's scraped items, optionally filtered by ?q=.
func (h *Handler) ListItems(c *gin.Context) {
	userID := auth.UserFirebaseUID(c)
	projectID := c.Param("id")
	ctx := c.Request.Context()

	p, err := h.projects.Get(ctx, userID, projectID)
	if err != nil {
		if errors.Is(err, projectdomain.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		logging.FromContext(ctx).LogError("list_items", err, zap.String("project_id", projectID))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load project"})
		return
	}

	all, err := h.items.ListByProject(ctx, userID, p.ID)
	if err != nil {
		logging.FromContext(ctx).LogError("list_items", err, zap.String("project_id", projectID))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load scraped data"})
		return
	}

	filtered := domain.FilterItems(all, c.Query("q"))
	views := make([]domain.ItemView, 0, len(filtered))
	for _, it := range filtered {
		views = append(views, it.View())
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"project": p,
		"items":   views,
		"total":   len(all),
	})
}
