package routes

import (
	"pbi_migration/internal/handlers"
	"pbi_migration/internal/middlewares"

	"github.com/gin-gonic/gin"
)

type TableauRoutes struct {
	handler *handlers.TableauHandler
}

func NewTableauRoutes(handler *handlers.TableauHandler) *TableauRoutes {
	return &TableauRoutes{handler: handler}
}

func (r *TableauRoutes) RegisterRoutes(router *gin.RouterGroup) {
	tableau := router.Group("/tableau")
	tableau.Use(middlewares.RequireAPIKey)
	{
		tableau.POST("/parse", r.handler.Parse)
		tableau.GET("/reports/:id/runs", r.handler.Runs)
	}
}
