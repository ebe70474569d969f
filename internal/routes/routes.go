package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pbi_migration/internal/handlers"
)

func RegisterRoutes(
	router *gin.Engine,
	tableauHandler *handlers.TableauHandler,
	sourceHandler *handlers.SourceHandler,
	artifactHandler *handlers.ArtifactHandler,
	scriptHandler *handlers.ScriptHandler,
	layoutHandler *handlers.LayoutHandler,
	modelHandler *handlers.ModelHandler,
) {
	api := router.Group("/api/v1")

	NewTableauRoutes(tableauHandler).RegisterRoutes(api)
	NewSourceRoutes(sourceHandler).RegisterRoutes(api)
	NewArtifactRoutes(artifactHandler).RegisterRoutes(api)
	NewScriptRoutes(scriptHandler).RegisterRoutes(api)
	NewLayoutRoutes(layoutHandler).RegisterRoutes(api)
	NewModelRoutes(modelHandler).RegisterRoutes(api)

	healthcheck := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/", healthcheck)
	router.GET("/health", healthcheck)
}
