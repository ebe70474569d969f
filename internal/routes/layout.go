package routes

import (
	"pbi_migration/internal/handlers"
	"pbi_migration/internal/middlewares"

	"github.com/gin-gonic/gin"
)

type LayoutRoutes struct {
	handler *handlers.LayoutHandler
}

func NewLayoutRoutes(handler *handlers.LayoutHandler) *LayoutRoutes {
	return &LayoutRoutes{handler: handler}
}

func (r *LayoutRoutes) RegisterRoutes(router *gin.RouterGroup) {
	layout := router.Group("/layout")
	layout.Use(middlewares.RequireAPIKey)
	{
		layout.POST("/generate", r.handler.Generate)
	}
}
