package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName     string
	Port        string
	GinMode     string
	CORSOrigins []string

	// Model backends
	Provider       string // "ollama" (default), "google", "openai"
	OllamaURL      string
	LLMModel       string
	EmbeddingModel string
	GeminiAPIKey   string
	GoogleLLMModel string
	GoogleEmbModel string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	OpenAILLMModel string
	OpenAIEmbModel string
	RequestTimeout int // seconds, per embedding/completion call

	// RAG settings
	ChunkSize     int
	ChunkOverlap  int
	TopKResults   int
	MinSimilarity float64

	// File upload settings
	MaxFileSizeMB     int64
	AllowedExtensions []string

	// Storage paths
	UploadDir   string
	StorageDir  string
	KBFile      string
	ChatsDir    string
	AutosaveMin int // minutes between knowledge-base snapshots, 0 disables

	// Rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// Tracing
	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		AppName:     getEnv("APP_NAME", "Local LLM Application"),
		Port:        getEnv("PORT", "8000"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173"), ","),

		Provider:       getEnv("MODEL_PROVIDER", "ollama"),
		OllamaURL:      getEnv("OLLAMA_URL", "http://localhost:11434"),
		LLMModel:       getEnv("LLM_MODEL", "ministral-3"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GoogleLLMModel: getEnv("GOOGLE_LLM_MODEL", "gemini-2.0-flash"),
		GoogleEmbModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		OpenAILLMModel: getEnv("OPENAI_LLM_MODEL", "gpt-4o-mini"),
		OpenAIEmbModel: getEnv("OPENAI_EMBEDDINGS_MODEL", "text-embedding-3-small"),
		RequestTimeout: getEnvInt("AI_REQUEST_TIMEOUT", 120),

		ChunkSize:     getEnvInt("CHUNK_SIZE", 500),
		ChunkOverlap:  getEnvInt("CHUNK_OVERLAP", 50),
		TopKResults:   getEnvInt("TOP_K_RESULTS", 3),
		MinSimilarity: getEnvFloat64("MIN_SIMILARITY", 0.3),

		MaxFileSizeMB:     getEnvInt64("MAX_FILE_SIZE_MB", 50),
		AllowedExtensions: strings.Split(getEnv("ALLOWED_EXTENSIONS", defaultExtensions), ","),

		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		StorageDir:  getEnv("STORAGE_DIR", "storage"),
		KBFile:      getEnv("KB_FILE", "knowledge_base.gob"),
		ChatsDir:    getEnv("CHATS_DIR", filepath.Join("storage", "chats")),
		AutosaveMin: getEnvInt("KB_AUTOSAVE_MINUTES", 10),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}

	switch cfg.Provider {
	case "ollama":
	case "google":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when MODEL_PROVIDER=google")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when MODEL_PROVIDER=openai")
		}
	default:
		return nil, fmt.Errorf("unknown MODEL_PROVIDER: %s", cfg.Provider)
	}

	// Create storage directories if they don't exist
	for _, dir := range []string{cfg.UploadDir, cfg.StorageDir, cfg.ChatsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}

	return cfg, nil
}

const defaultExtensions = ".txt,.pdf,.xlsx,.xls,.csv,.md,.html,.css,.js,.jsx,.json,.py,.ts,.tsx,.go,.rs,.java,.c,.h,.cpp,.cs,.rb,.php,.sh,.sql,.yaml,.yml,.xml,.png,.jpg,.jpeg,.gif,.webp,.bmp"

// ActiveModels resolves the completion and embedding model names for the
// configured provider. Hosted providers have their own model namespaces, so
// the Ollama defaults must never leak into their requests.
func (c *Config) ActiveModels() (llm, embedding string) {
	switch c.Provider {
	case "google":
		return c.GoogleLLMModel, c.GoogleEmbModel
	case "openai":
		return c.OpenAILLMModel, c.OpenAIEmbModel
	default:
		return c.LLMModel, c.EmbeddingModel
	}
}

// KBPath returns the on-disk location of the knowledge-base snapshot.
func (c *Config) KBPath() string {
	return filepath.Join(c.StorageDir, c.KBFile)
}

// MaxFileSizeBytes converts the configured upload limit to bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return c.MaxFileSizeMB * 1024 * 1024
}

// ExtensionAllowed reports whether an upload extension is on the allow-list.
func (c *Config) ExtensionAllowed(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowed := range c.AllowedExtensions {
		if strings.TrimSpace(allowed) == ext {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
