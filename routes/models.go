package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"local-llm-chatbot/internal/ai"
	"local-llm-chatbot/internal/logger"
	"local-llm-chatbot/internal/rag"
	"local-llm-chatbot/models"
	"local-llm-chatbot/utils"
)

// SetupModelRoutes registers model discovery and switching endpoints.
func SetupModelRoutes(router *gin.Engine, client ai.Client, engine *rag.Engine) {
	group := router.Group("/models")
	group.GET("/list", handleListModels(client, engine))
	group.POST("/switch", handleSwitchModel(client, engine))
	group.GET("/current", handleCurrentModel(engine))
}

func handleListModels(client ai.Client, engine *rag.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		available, err := client.ListModels(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list models", gin.H{"error": err.Error()})
			return
		}

		entries := make([]models.ModelEntry, 0, len(available))
		for _, m := range available {
			entries = append(entries, models.ModelEntry{
				Name:         m.Name,
				Size:         m.Size,
				Modified:     m.Modified,
				Capabilities: m.Capabilities,
			})
		}

		llm, embedding := engine.Models()
		c.JSON(http.StatusOK, models.ModelListResponse{
			Models:           entries,
			CurrentLLM:       llm,
			CurrentEmbedding: embedding,
		})
	}
}

func handleSwitchModel(client ai.Client, engine *rag.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SwitchModelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		available, err := client.ListModels(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to verify model", gin.H{"error": err.Error()})
			return
		}

		found := false
		for _, m := range available {
			if m.Name == req.Model {
				found = true
				break
			}
		}
		if !found {
			utils.RespondWithNotFound(c, "Model not found: "+req.Model)
			return
		}

		engine.SetModel(req.Model)
		logger.Info("Switched completion model", "model", req.Model)

		c.JSON(http.StatusOK, models.StatusResponse{
			Status:  "success",
			Message: "Switched to model " + req.Model,
		})
	}
}

func handleCurrentModel(engine *rag.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		llm, embedding := engine.Models()
		c.JSON(http.StatusOK, gin.H{
			"llm":       llm,
			"embedding": embedding,
		})
	}
}
