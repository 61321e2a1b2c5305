package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"local-llm-chatbot/internal/config"
	"local-llm-chatbot/internal/rag"
	"local-llm-chatbot/models"
)

// SetupCoreRoutes registers the index and health endpoints.
func SetupCoreRoutes(router *gin.Engine, cfg *config.Config, engine *rag.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": cfg.AppName + " API",
			"docs":    "/health",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		llm, embedding := engine.Models()
		c.JSON(http.StatusOK, models.HealthResponse{
			Status: "healthy",
			Models: map[string]string{
				"llm":       llm,
				"embedding": embedding,
			},
			VectorStoreSize: engine.Store().Len(),
		})
	})
}
