package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/Kenz1481/web-deployment-website/internal/api/http"
	"github.com/Kenz1481/web-deployment-website/internal/api/http/middleware"
	"github.com/Kenz1481/web-deployment-website/internal/api/http/routes"
	projecthttp "github.com/Kenz1481/web-deployment-website/internal/projects/http"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	AdminAPIKey string
	DB          httpapi.Pinger
	Redis       httpapi.Pinger
	Projects    *projecthttp.Handler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", middleware.HeaderAPIKey, middleware.HeaderRequestID},
		ExposeHeaders:   []string{middleware.HeaderRequestID},
		MaxAge:          12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.RegisterV1(r, routes.V1Deps{
		Projects:    dep.Projects,
		AdminAPIKey: dep.AdminAPIKey,
	})

	return r
}
