package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (s *Server) setupSwagger() {
	s.router.GET("/api/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"title":       "Argus Dashboard API",
			"version":     s.config.Version,
			"description": "Session control and diagnostics for the multi-camera tracking dashboard core",
			"swagger_ui":  "/docs/index.html",
			"endpoints": gin.H{
				"health":       "/health",
				"info":         "/",
				"session":      "/session",
				"trajectories": "/trajectories",
				"system":       "/system",
			},
			"dashboard_id": s.config.DashboardID,
			"port":         s.config.Port,
		})
	})

	s.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
