package routes

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"local-llm-chatbot/internal/config"
	"local-llm-chatbot/internal/rag"
	"local-llm-chatbot/models"
	"local-llm-chatbot/utils"
)

// SetupKBRoutes registers explicit knowledge base persistence endpoints.
func SetupKBRoutes(router *gin.Engine, cfg *config.Config, engine *rag.Engine) {
	kb := router.Group("/kb")

	kb.POST("/save", func(c *gin.Context) {
		if err := engine.SaveKnowledgeBase(cfg.KBPath()); err != nil {
			utils.RespondWithInternalError(c, "Failed to save knowledge base", gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, models.StatusResponse{
			Status:  "success",
			Message: "Knowledge base saved",
		})
	})

	kb.POST("/load", func(c *gin.Context) {
		if _, err := os.Stat(cfg.KBPath()); os.IsNotExist(err) {
			utils.RespondWithNotFound(c, "No saved knowledge base found")
			return
		}
		if err := engine.LoadKnowledgeBase(cfg.KBPath()); err != nil {
			utils.RespondWithInternalError(c, "Failed to load knowledge base", gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, models.StatusResponse{
			Status:  "success",
			Message: "Knowledge base loaded",
		})
	})

	kb.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, engine.Stats())
	})
}
