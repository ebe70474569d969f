package middlewares

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// RequireAPIKey guards the pipeline routes with a shared key from the
// API_KEY environment variable, compared in constant time against the
// X-API-Key header. With API_KEY unset the service runs open, which is the
// local-development default.
func RequireAPIKey(c *gin.Context) {
	expected := os.Getenv("API_KEY")
	if expected == "" {
		c.Next()
		return
	}

	provided := c.GetHeader("X-API-Key")
	if provided == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing X-API-Key header"})
		return
	}

	if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid API key"})
		return
	}

	c.Next()
}
