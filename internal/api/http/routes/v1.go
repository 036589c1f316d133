package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Kenz1481/web-deployment-website/internal/api/http/middleware"
	projecthttp "github.com/Kenz1481/web-deployment-website/internal/projects/http"
)

type V1Deps struct {
	Projects    *projecthttp.Handler
	AdminAPIKey string
}

// RegisterV1 mounts the public and admin project routes under /api/v1.
func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")

	dep.Projects.RegisterPublic(api.Group("/projects"))

	admin := api.Group("/admin")
	admin.Use(middleware.APIKeyMiddleware(dep.AdminAPIKey))
	dep.Projects.RegisterAdmin(admin.Group("/projects"))
}
