package ai

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient backs the capability contract with the OpenAI API, or any
// OpenAI-compatible endpoint when a base URL is configured.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates an OpenAI-backed client.
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}
}

// Embed returns the embedding vector for a text.
func (o *OpenAIClient) Embed(ctx context.Context, model, text string) ([]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: openai.EmbeddingModel(model),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned for model %s", model)
	}
	return resp.Data[0].Embedding, nil
}

// Chat sends a message list and returns the completion text.
func (o *OpenAIClient) Chat(ctx context.Context, model string, messages []Message) (string, error) {
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: chatMessages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion from model %s", model)
	}
	return resp.Choices[0].Message.Content, nil
}

// ListModels enumerates the models visible to the API key.
func (o *OpenAIClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	resp, err := o.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	models := make([]ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, ModelInfo{
			Name:         m.ID,
			Modified:     strconv.FormatInt(m.CreatedAt, 10),
			Capabilities: DetectCapabilities(m.ID),
		})
	}
	return models, nil
}
