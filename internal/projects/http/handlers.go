package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/listly/listly-backend/internal/auth"
	"github.com/listly/listly-backend/internal/logging"
	"github.com/listly/listly-backend/internal/projects/domain"
)

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	types := domain.DefaultDataTypes
	if req.DataTypes != nil {
		types = make([]domain.DataType, 0, len(*req.DataTypes))
		for _, dt := range *req.DataTypes {
			types = append(types, domain.DataType(dt))
		}
	}

	ctx := c.Request.Context()
	p, err := h.svc.Create(ctx, domain.CreateProjectRequest{
		UserID:      auth.UserFirebaseUID(c),
		Name:        req.Name,
		Description: req.Description,
		TargetURL:   req.TargetURL,
		DataTypes:   types,
		RenderJS:    req.RenderJS,
	})
	if err != nil {
		h.writeError(c, "create_project", err)
		return
	}

	if h.runner == nil {
		c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
		return
	}

	// The scrape runs inside the request; the project is created either way.
	out, err := h.runner.Run(ctx, p)
	if err != nil {
		c.JSON(http.StatusCreated, gin.H{
			"ok":      true,
			"project": out,
			"warning": "Failed to scrape website: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, scrapeResponse(out))
}

func (h *Handler) list(c *gin.Context) {
	items, stats, err := h.svc.List(c.Request.Context(), auth.UserFirebaseUID(c), c.Query("q"))
	if err != nil {
		h.writeError(c, "list_projects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items, "stats": stats})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, "get_project", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.Update(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"), domain.UpdateProjectRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(c, "update_project", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id")); err != nil {
		h.writeError(c, "delete_project", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) rescrape(c *gin.Context) {
	if h.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "scraping is not configured"})
		return
	}

	ctx := c.Request.Context()
	p, err := h.svc.Get(ctx, auth.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, "rescrape_project", err)
		return
	}

	if !domain.IsTerminal(p.Status) {
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": conflictMessage(p.Status)})
		return
	}

	out, err := h.runner.Rescrape(ctx, p)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			// Lost a race; report what the project is doing now.
			status := p.Status
			if cur, gerr := h.svc.Get(ctx, p.UserID, p.ID); gerr == nil {
				status = cur.Status
			}
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": conflictMessage(status)})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"project": out,
			"warning": "Failed to scrape website: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, scrapeResponse(out))
}

func conflictMessage(status string) string {
	switch status {
	case domain.StatusRunning:
		return "project is already running"
	case domain.StatusPending:
		return "project has not finished its first scrape"
	default:
		return "project status changed to " + status + ", please try again"
	}
}

func scrapeResponse(p *domain.Project) gin.H {
	resp := gin.H{"ok": true, "project": p, "items_found": p.ScrapedItems}
	if p.ScrapedItems == 0 {
		resp["warning"] = noDataWarning
	}
	return resp
}

func (h *Handler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": err.Error()})
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
	case errors.Is(err, domain.ErrProjectExists):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
	default:
		logging.FromContext(c.Request.Context()).LogError(op, err, zap.String("project_id", c.Param("id")))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
	}
}
