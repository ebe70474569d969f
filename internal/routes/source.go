package routes

import (
	"pbi_migration/internal/handlers"
	"pbi_migration/internal/middlewares"

	"github.com/gin-gonic/gin"
)

type SourceRoutes struct {
	handler *handlers.SourceHandler
}

func NewSourceRoutes(handler *handlers.SourceHandler) *SourceRoutes {
	return &SourceRoutes{handler: handler}
}

func (r *SourceRoutes) RegisterRoutes(router *gin.RouterGroup) {
	source := router.Group("/source")
	source.Use(middlewares.RequireAPIKey)
	{
		source.POST("/configure", r.handler.Configure)
		source.GET("/worksheet", r.handler.Worksheet)
	}
}
