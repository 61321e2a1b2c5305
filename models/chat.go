package models

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Message       string  `json:"message" binding:"required,min=1,max=5000"`
	UseRAG        *bool   `json:"use_rag"`
	TopK          int     `json:"top_k" binding:"omitempty,min=1,max=10"`
	MinSimilarity float64 `json:"min_similarity" binding:"omitempty,min=0,max=1"`
	Model         string  `json:"model"`
}

// UseRAGOrDefault resolves the optional flag; RAG is on unless disabled.
func (r *ChatRequest) UseRAGOrDefault() bool {
	if r.UseRAG == nil {
		return true
	}
	return *r.UseRAG
}

// ChatResponse is the body of a successful chat reply
type ChatResponse struct {
	Response    string   `json:"response"`
	Sources     []string `json:"sources"`
	ContextUsed bool     `json:"context_used"`
	ModelUsed   string   `json:"model_used"`
}

// ModelListResponse lists the models the AI backend exposes
type ModelListResponse struct {
	Models           []ModelEntry `json:"models"`
	CurrentLLM       string       `json:"current_llm"`
	CurrentEmbedding string       `json:"current_embedding"`
}

// ModelEntry is one model in a ModelListResponse
type ModelEntry struct {
	Name         string   `json:"name"`
	Size         int64    `json:"size,omitempty"`
	Modified     string   `json:"modified,omitempty"`
	Capabilities []string `json:"capabilities"`
}

// SwitchModelRequest is the body of POST /models/switch
type SwitchModelRequest struct {
	Model string `json:"model" binding:"required"`
}
