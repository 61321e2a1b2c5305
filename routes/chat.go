package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"local-llm-chatbot/internal/rag"
	"local-llm-chatbot/models"
	"local-llm-chatbot/utils"
)

// SetupChatRoutes registers the chat endpoint.
func SetupChatRoutes(router *gin.Engine, engine *rag.Engine) {
	router.POST("/chat", handleChat(engine))
}

func handleChat(engine *rag.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		result := engine.Chat(c.Request.Context(), req.Message, rag.ChatOptions{
			UseRAG:        req.UseRAGOrDefault(),
			TopK:          req.TopK,
			MinSimilarity: req.MinSimilarity,
			Model:         req.Model,
		})

		c.JSON(http.StatusOK, models.ChatResponse{
			Response:    result.Answer,
			Sources:     result.Sources,
			ContextUsed: result.ContextUsed,
			ModelUsed:   result.ModelUsed,
		})
	}
}
