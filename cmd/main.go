package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"local-llm-chatbot/internal/ai"
	"local-llm-chatbot/internal/chats"
	"local-llm-chatbot/internal/config"
	"local-llm-chatbot/internal/logger"
	"local-llm-chatbot/internal/rag"
	"local-llm-chatbot/internal/telemetry"
	"local-llm-chatbot/middleware"
	"local-llm-chatbot/routes"
	"local-llm-chatbot/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Tracing is opt-in; a local deployment usually runs without a collector
	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer(cfg.AppName, cfg.OTLPEndpoint)
		if err != nil {
			logger.Error("Failed to initialize tracer", "error", err)
		} else {
			defer shutdown()
		}
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Error("Failed to initialize metrics", "error", err)
	}

	// AI backend (ollama, google or openai per configuration)
	client, err := ai.NewClient(cfg)
	if err != nil {
		log.Fatal("Failed to create AI client:", err)
	}

	store := rag.NewVectorStore()
	llmModel, embModel := cfg.ActiveModels()
	engine := rag.NewEngine(client, store, rag.EngineConfig{
		LLMModel:       llmModel,
		EmbeddingModel: embModel,
		ChunkSize:      cfg.ChunkSize,
		ChunkOverlap:   cfg.ChunkOverlap,
		TopKResults:    cfg.TopKResults,
		MinSimilarity:  cfg.MinSimilarity,
	})

	if metrics != nil {
		engine.SetMetrics(metrics)
	}

	if err := engine.LoadKnowledgeBase(cfg.KBPath()); err != nil {
		logger.Error("Failed to restore knowledge base, starting empty", "error", err)
	}

	sessionStore, err := chats.NewStore(cfg.ChatsDir)
	if err != nil {
		log.Fatal("Failed to create chat session store:", err)
	}

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RateLimitMiddleware(cfg))

	if cfg.TracingEnabled {
		router.Use(middleware.TracingMiddleware())
		router.Use(middleware.EnrichTrace())
	}
	if metrics != nil {
		router.Use(middleware.MetricsMiddleware(metrics))
	}

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With"}
	router.Use(cors.New(corsConfig))

	// Setup routes
	routes.SetupCoreRoutes(router, cfg, engine)
	routes.SetupChatRoutes(router, engine)
	routes.SetupDocumentRoutes(router, cfg, engine, metrics)
	routes.SetupKBRoutes(router, cfg, engine)
	routes.SetupModelRoutes(router, client, engine)
	routes.SetupSessionRoutes(router, sessionStore)

	// Periodic knowledge base persistence; 0 disables the scheduler
	autosave := services.NewAutosave(cfg, engine)
	if cfg.AutosaveMin > 0 {
		if err := autosave.Start(cfg.AutosaveMin); err != nil {
			logger.Error("Failed to start autosave", "error", err)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port, "provider", cfg.Provider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	autosave.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
