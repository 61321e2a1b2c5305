package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"local-llm-chatbot/internal/config"
)

// Message is a single turn in a chat exchange.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelInfo describes a model available on the active provider.
type ModelInfo struct {
	Name         string   `json:"name"`
	Size         int64    `json:"size"`
	Modified     string   `json:"modified"`
	Digest       string   `json:"digest"`
	Capabilities []string `json:"capabilities"`
}

// Client is the narrow capability contract the retrieval engine consumes:
// one call to embed a text, one call to complete a message list.
type Client interface {
	Embed(ctx context.Context, model, text string) ([]float32, error)
	Chat(ctx context.Context, model string, messages []Message) (string, error)
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// NewClient constructs the provider selected by configuration.
// Default provider is a local Ollama instance.
func NewClient(cfg *config.Config) (Client, error) {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second

	switch cfg.Provider {
	case "ollama", "":
		return NewOllamaClient(cfg.OllamaURL, timeout), nil

	case "google":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("missing GEMINI_API_KEY for google provider")
		}
		return NewGoogleClient(context.Background(), cfg.GeminiAPIKey)

	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("missing OPENAI_API_KEY for openai provider")
		}
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, timeout), nil

	default:
		return nil, fmt.Errorf("unknown model provider: %s", cfg.Provider)
	}
}

// DetectCapabilities guesses what a model can do from its name.
func DetectCapabilities(name string) []string {
	var capabilities []string
	lower := strings.ToLower(name)

	if strings.Contains(lower, "vision") || strings.Contains(lower, "llava") ||
		strings.Contains(lower, "ministral") || strings.Contains(lower, "pixtral") {
		capabilities = append(capabilities, "vision")
	}
	if strings.Contains(lower, "code") || strings.Contains(lower, "coder") {
		capabilities = append(capabilities, "coding")
	}
	if strings.Contains(lower, "embed") {
		capabilities = append(capabilities, "embedding")
	}
	if len(capabilities) == 0 {
		capabilities = append(capabilities, "chat")
	}
	return capabilities
}
