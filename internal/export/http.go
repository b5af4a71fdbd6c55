package export

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/listly/listly-backend/internal/auth"
	"github.com/listly/listly-backend/internal/logging"
	projectdomain "github.com/listly/listly-backend/internal/projects/domain"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts GET /:id/export under the projects group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/:id/export", h.export)
}

func (h *Handler) export(c *gin.Context) {
	f, err := ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	file, err := h.svc.Export(ctx, auth.UserFirebaseUID(c), c.Param("id"), f)
	if err != nil {
		if errors.Is(err, projectdomain.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		logging.FromContext(ctx).LogError("export", err, zap.String("project_id", c.Param("id")))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to export data"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	c.Header("X-Export-Items", strconv.Itoa(file.Items))
	if file.Key != "" {
		c.Header("X-Export-Key", file.Key)
	}
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
