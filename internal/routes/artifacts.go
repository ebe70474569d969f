package routes

import (
	"pbi_migration/internal/handlers"
	"pbi_migration/internal/middlewares"

	"github.com/gin-gonic/gin"
)

type ArtifactRoutes struct {
	handler *handlers.ArtifactHandler
}

func NewArtifactRoutes(handler *handlers.ArtifactHandler) *ArtifactRoutes {
	return &ArtifactRoutes{handler: handler}
}

func (r *ArtifactRoutes) RegisterRoutes(router *gin.RouterGroup) {
	artifacts := router.Group("/artifacts")
	artifacts.Use(middlewares.RequireAPIKey)
	{
		artifacts.POST("/generate", r.handler.Generate)
	}
}
