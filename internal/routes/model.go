package routes

import (
	"pbi_migration/internal/handlers"
	"pbi_migration/internal/middlewares"

	"github.com/gin-gonic/gin"
)

type ModelRoutes struct {
	handler *handlers.ModelHandler
}

func NewModelRoutes(handler *handlers.ModelHandler) *ModelRoutes {
	return &ModelRoutes{handler: handler}
}

func (r *ModelRoutes) RegisterRoutes(router *gin.RouterGroup) {
	model := router.Group("/model")
	model.Use(middlewares.RequireAPIKey)
	{
		model.POST("/apply", r.handler.Apply)
	}
}
