package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GoogleClient backs the capability contract with the Gemini API.
type GoogleClient struct {
	client *genai.Client
}

// NewGoogleClient creates a Gemini-backed client.
func NewGoogleClient(ctx context.Context, apiKey string) (*GoogleClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GoogleClient{client: client}, nil
}

// Embed returns the embedding vector for a text.
func (g *GoogleClient) Embed(ctx context.Context, model, text string) ([]float32, error) {
	em := g.client.EmbeddingModel(model)
	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Embedding.Values, nil
}

// Chat sends a message list and returns the generated reply.
// A leading system message becomes the model's system instruction.
func (g *GoogleClient) Chat(ctx context.Context, model string, messages []Message) (string, error) {
	gm := g.client.GenerativeModel(model)
	gm.SetTemperature(0.7)
	gm.SetMaxOutputTokens(2048)

	var parts []genai.Part
	for _, msg := range messages {
		if msg.Role == "system" {
			gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(msg.Content)}}
			continue
		}
		parts = append(parts, genai.Text(msg.Content))
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no user content to send")
	}

	resp, err := gm.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model %s", model)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// ListModels enumerates the models visible to the API key.
func (g *GoogleClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var models []ModelInfo
	it := g.client.ListModels(ctx)
	for {
		m, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		name := strings.TrimPrefix(m.Name, "models/")
		models = append(models, ModelInfo{
			Name:         name,
			Capabilities: DetectCapabilities(name),
		})
	}
	return models, nil
}

// Close releases the underlying API connection.
func (g *GoogleClient) Close() error {
	return g.client.Close()
}
