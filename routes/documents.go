package routes

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"local-llm-chatbot/internal/config"
	"local-llm-chatbot/internal/extract"
	"local-llm-chatbot/internal/logger"
	"local-llm-chatbot/internal/rag"
	"local-llm-chatbot/internal/telemetry"
	"local-llm-chatbot/models"
	"local-llm-chatbot/utils"
)

// SetupDocumentRoutes registers upload, listing and deletion endpoints.
// Every mutation persists the knowledge base afterwards so a crash never
// loses more than the request in flight.
func SetupDocumentRoutes(router *gin.Engine, cfg *config.Config, engine *rag.Engine, metrics *telemetry.Metrics) {
	router.POST("/upload", handleUpload(cfg, engine, metrics))

	docs := router.Group("/documents")
	docs.POST("/add", handleAddDocument(cfg, engine, metrics))
	docs.GET("", handleListDocuments(engine))
	docs.DELETE("/delete", handleDeleteDocument(cfg, engine))
	docs.POST("/clear", handleClearDocuments(cfg, engine))
}

func handleUpload(cfg *config.Config, engine *rag.Engine, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "No file provided", gin.H{"error": err.Error()})
			return
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !cfg.ExtensionAllowed(ext) {
			utils.RespondWithBadRequest(c,
				fmt.Sprintf("File type %s is not allowed", ext),
				gin.H{"allowed": cfg.AllowedExtensions})
			return
		}

		if file.Size > cfg.MaxFileSizeBytes() {
			utils.RespondWithTooLarge(c,
				fmt.Sprintf("File exceeds the %dMB limit", cfg.MaxFileSizeMB),
				gin.H{"size": file.Size})
			return
		}

		dest := filepath.Join(cfg.UploadDir, filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, dest); err != nil {
			utils.RespondWithInternalError(c, "Failed to save uploaded file", gin.H{"error": err.Error()})
			return
		}

		text, err := extract.Process(dest)
		if err != nil {
			utils.RespondWithBadRequest(c, "Failed to extract text from file", gin.H{"error": err.Error()})
			return
		}

		result, err := engine.AddDocument(c.Request.Context(), text, dest, nil)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to index document", gin.H{"error": err.Error()})
			return
		}

		if metrics != nil {
			metrics.RecordIngest(ext, int64(result.ChunksCreated))
		}
		persistKnowledgeBase(cfg, engine)

		c.JSON(http.StatusOK, models.UploadResponse{
			Status:        "success",
			Filename:      file.Filename,
			ChunksCreated: result.ChunksCreated,
			Message:       fmt.Sprintf("Document processed into %d chunks", result.ChunksCreated),
		})
	}
}

func handleAddDocument(cfg *config.Config, engine *rag.Engine, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AddDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		text, err := extract.Process(req.Path)
		if err != nil {
			utils.RespondWithBadRequest(c, "Failed to extract text from file", gin.H{"error": err.Error()})
			return
		}

		result, err := engine.AddDocument(c.Request.Context(), text, req.Path, req.Metadata)
		if err != nil {
			if errors.Is(err, rag.ErrEmptyDocument) || errors.Is(err, rag.ErrNoChunks) {
				utils.RespondWithBadRequest(c, "Document contains no indexable text", gin.H{"error": err.Error()})
				return
			}
			utils.RespondWithInternalError(c, "Failed to index document", gin.H{"error": err.Error()})
			return
		}

		if metrics != nil {
			metrics.RecordIngest(filepath.Ext(req.Path), int64(result.ChunksCreated))
		}
		persistKnowledgeBase(cfg, engine)

		c.JSON(http.StatusOK, models.UploadResponse{
			Status:        "success",
			Filename:      filepath.Base(req.Path),
			ChunksCreated: result.ChunksCreated,
			Message:       fmt.Sprintf("Document processed into %d chunks", result.ChunksCreated),
		})
	}
}

func handleListDocuments(engine *rag.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs := engine.Documents()
		if docs == nil {
			docs = []rag.DocumentInfo{}
		}
		stats := engine.Stats()

		c.JSON(http.StatusOK, models.DocumentListResponse{
			Documents:      docs,
			TotalDocuments: stats.TotalDocuments,
			TotalChunks:    stats.TotalChunks,
		})
	}
}

func handleDeleteDocument(cfg *config.Config, engine *rag.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DeleteDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		removed := engine.DeleteDocument(req.Filename)
		if removed == 0 {
			utils.RespondWithNotFound(c, fmt.Sprintf("No document named %s", req.Filename))
			return
		}

		// Best effort removal of the stored upload; the index is authoritative.
		uploaded := filepath.Join(cfg.UploadDir, filepath.Base(req.Filename))
		if err := os.Remove(uploaded); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove uploaded file", "path", uploaded, "error", err)
		}

		persistKnowledgeBase(cfg, engine)

		c.JSON(http.StatusOK, models.StatusResponse{
			Status:  "success",
			Message: fmt.Sprintf("Removed %d chunks for %s", removed, req.Filename),
		})
	}
}

func handleClearDocuments(cfg *config.Config, engine *rag.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		engine.ClearKnowledgeBase()
		persistKnowledgeBase(cfg, engine)

		c.JSON(http.StatusOK, models.StatusResponse{
			Status:  "success",
			Message: "Knowledge base cleared",
		})
	}
}

func persistKnowledgeBase(cfg *config.Config, engine *rag.Engine) {
	if err := engine.SaveKnowledgeBase(cfg.KBPath()); err != nil {
		logger.Error("Auto-save after mutation failed", "error", err)
	}
}
