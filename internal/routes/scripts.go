package routes

import (
	"pbi_migration/internal/handlers"
	"pbi_migration/internal/middlewares"

	"github.com/gin-gonic/gin"
)

type ScriptRoutes struct {
	handler *handlers.ScriptHandler
}

func NewScriptRoutes(handler *handlers.ScriptHandler) *ScriptRoutes {
	return &ScriptRoutes{handler: handler}
}

func (r *ScriptRoutes) RegisterRoutes(router *gin.RouterGroup) {
	scripts := router.Group("/scripts")
	scripts.Use(middlewares.RequireAPIKey)
	{
		scripts.POST("/generate", r.handler.Generate)
	}
}
