package http

import "github.com/gin-gonic/gin"

// Register mounts the item and event routes under the projects group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/:id/items", h.ListItems)
	rg.GET("/:id/events", h.StreamEvents)
}
