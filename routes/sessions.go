package routes

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"local-llm-chatbot/internal/chats"
	"local-llm-chatbot/models"
	"local-llm-chatbot/utils"
)

// SetupSessionRoutes registers chat session persistence endpoints.
func SetupSessionRoutes(router *gin.Engine, store *chats.Store) {
	group := router.Group("/chats")
	group.POST("/save", handleSaveSession(store))
	group.GET("/list", handleListSessions(store))
	group.GET("/load/:id", handleGetSession(store))
	group.DELETE("/delete/:id", handleDeleteSession(store))
	group.POST("/clear", handleClearSessions(store))
	group.POST("/export/:id", handleExportSession(store))
}

func handleSaveSession(store *chats.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var session chats.Session
		if err := c.ShouldBindJSON(&session); err != nil {
			utils.RespondWithBadRequest(c, "Invalid session data", gin.H{"error": err.Error()})
			return
		}
		if err := store.Save(&session); err != nil {
			utils.RespondWithInternalError(c, "Failed to save session", gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "success",
			"session_id": session.ID,
		})
	}
}

func handleListSessions(store *chats.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions, err := store.List()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list sessions", gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"sessions": sessions,
			"total":    len(sessions),
		})
	}
}

func handleGetSession(store *chats.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := store.Load(c.Param("id"))
		if err != nil {
			if os.IsNotExist(err) {
				utils.RespondWithNotFound(c, "Session not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to load session", gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

func handleDeleteSession(store *chats.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Delete(c.Param("id")); err != nil {
			if os.IsNotExist(err) {
				utils.RespondWithNotFound(c, "Session not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to delete session", gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, models.StatusResponse{Status: "success", Message: "Session deleted"})
	}
}

func handleClearSessions(store *chats.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := store.Clear()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to clear sessions", gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"deleted": count,
		})
	}
}

func handleExportSession(store *chats.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		content, filename, err := store.Export(c.Param("id"))
		if err != nil {
			if os.IsNotExist(err) {
				utils.RespondWithNotFound(c, "Session not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to export session", gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
	}
}
