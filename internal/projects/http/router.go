package http

import "github.com/gin-gonic/gin"

// RegisterPublic attaches the unauthenticated project routes.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("", h.listPublic)
	rg.GET("/:id", h.getPublic)
	rg.POST("/:id/reviews", h.addReview)
}

// RegisterAdmin attaches the operator routes. The caller guards the group.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.listAll)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
	rg.GET("/:id/events", h.streamEvents)
}
