package rag

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"local-llm-chatbot/internal/ai"
	"local-llm-chatbot/internal/logger"
	"local-llm-chatbot/internal/telemetry"
)

const ragSystemPrompt = `You are a helpful AI assistant. Use the following context to answer the user's question accurately.

If the context doesn't contain relevant information, politely say so and provide a general response if possible.

Context:
%s
`

const genericSystemPrompt = "You are a helpful AI assistant. Answer the user's question to the best of your ability."

// EngineConfig carries the retrieval knobs; callers take the values from
// configuration rather than hardwiring them.
type EngineConfig struct {
	LLMModel       string
	EmbeddingModel string
	ChunkSize      int
	ChunkOverlap   int
	TopKResults    int
	MinSimilarity  float64
}

// Engine coordinates chunking, embedding and indexing on ingest, and
// retrieval, prompt assembly and completion on chat. It owns exactly one
// VectorStore; callers inject the store and the AI capability client.
type Engine struct {
	store   *VectorStore
	client  ai.Client
	cfg     EngineConfig
	metrics *telemetry.Metrics

	mu       sync.RWMutex // guards the switchable model names
	llmModel string
	embModel string
}

// IngestResult reports the outcome of adding one document.
type IngestResult struct {
	Success       bool `json:"success"`
	ChunksCreated int  `json:"chunks_created"`
}

// ChatOptions tunes a single chat request.
type ChatOptions struct {
	UseRAG        bool
	TopK          int     // 0 means the configured default
	MinSimilarity float64 // 0 means the configured default
	Model         string  // "" means the current model
}

// ChatResult is what the chat path always returns; failures degrade into
// the answer text instead of propagating.
type ChatResult struct {
	Answer      string   `json:"answer"`
	Sources     []string `json:"sources"`
	ContextUsed bool     `json:"context_used"`
	ModelUsed   string   `json:"model_used"`
}

// Stats summarizes the knowledge base, always derived fresh from the store.
type Stats struct {
	TotalChunks    int            `json:"total_chunks"`
	TotalDocuments int            `json:"total_documents"`
	Documents      map[string]int `json:"documents"`
}

// DocumentInfo describes one ingested document for listing endpoints.
type DocumentInfo struct {
	Filename   string    `json:"filename"`
	Source     string    `json:"source"`
	Chunks     int       `json:"chunks"`
	UploadDate time.Time `json:"upload_date"`
}

// NewEngine creates an engine around an existing store.
func NewEngine(client ai.Client, store *VectorStore, cfg EngineConfig) *Engine {
	return &Engine{
		store:    store,
		client:   client,
		cfg:      cfg,
		llmModel: cfg.LLMModel,
		embModel: cfg.EmbeddingModel,
	}
}

// SetMetrics attaches duration instruments to embedding and completion calls.
func (e *Engine) SetMetrics(m *telemetry.Metrics) {
	e.metrics = m
}

// embed delegates to the client and records the call duration when metrics
// are attached. All engine embedding goes through here.
func (e *Engine) embed(ctx context.Context, model, text string) ([]float32, error) {
	start := time.Now()
	vector, err := e.client.Embed(ctx, model, text)
	if e.metrics != nil {
		e.metrics.RecordEmbedding(model, time.Since(start).Seconds())
	}
	return vector, err
}

// complete delegates to the client and records the call duration when
// metrics are attached. All engine completions go through here.
func (e *Engine) complete(ctx context.Context, model string, messages []ai.Message) (string, error) {
	start := time.Now()
	answer, err := e.client.Chat(ctx, model, messages)
	if e.metrics != nil {
		e.metrics.RecordCompletion(model, time.Since(start).Seconds())
	}
	return answer, err
}

// Store exposes the underlying vector store for read-only projections.
func (e *Engine) Store() *VectorStore {
	return e.store
}

// Models returns the current completion and embedding model names.
func (e *Engine) Models() (llm, embedding string) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.llmModel, e.embModel
}

// SetModel switches the active completion model.
func (e *Engine) SetModel(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.llmModel = name
}

// reservedMetadataKeys are owned by the engine and never overridden by
// caller-supplied extras.
var reservedMetadataKeys = map[string]struct{}{
	"source":           {},
	"filename":         {},
	"chunk_index":      {},
	"upload_timestamp": {},
	"file_type":        {},
}

// AddDocument chunks the extracted text, embeds each chunk and inserts the
// survivors into the store. A chunk whose embedding call fails is logged and
// skipped; one bad chunk does not abort the document. The returned count is
// the number of chunks actually created, after dedup and skips.
func (e *Engine) AddDocument(ctx context.Context, text, sourceID string, extra map[string]string) (IngestResult, error) {
	if strings.TrimSpace(text) == "" {
		return IngestResult{}, fmt.Errorf("%w: %s", ErrEmptyDocument, sourceID)
	}

	chunks, err := Chunk(text, e.cfg.ChunkSize, e.cfg.ChunkOverlap)
	if err != nil {
		return IngestResult{}, err
	}
	if len(chunks) == 0 {
		return IngestResult{}, fmt.Errorf("%w: %s", ErrNoChunks, sourceID)
	}

	filename := filepath.Base(sourceID)
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	uploadedAt := time.Now()

	cleanExtra := make(map[string]string, len(extra))
	for k, v := range extra {
		if _, reserved := reservedMetadataKeys[k]; reserved {
			continue
		}
		cleanExtra[k] = v
	}
	if len(cleanExtra) == 0 {
		cleanExtra = nil
	}

	_, embModel := e.Models()
	created := 0

	for i, chunk := range chunks {
		vector, err := e.embed(ctx, embModel, chunk)
		if err != nil {
			logger.Error("Failed to embed chunk, skipping",
				"source", sourceID, "chunk", i, "error", err)
			continue
		}

		meta := ChunkMetadata{
			Source:          sourceID,
			Filename:        filename,
			ChunkIndex:      i,
			UploadTimestamp: uploadedAt,
			FileType:        filepath.Ext(filename),
			Extra:           cleanExtra,
		}

		added, err := e.store.Insert(fmt.Sprintf("%s_%d", stem, i), vector, chunk, meta)
		if err != nil {
			// Dimension mismatches indicate a model change mid-corpus; the
			// store cannot repair that silently.
			return IngestResult{Success: created > 0, ChunksCreated: created}, err
		}
		if added {
			created++
		} else {
			logger.Debug("Skipping duplicate chunk", "source", sourceID, "chunk", i)
		}
	}

	logger.Info("Added document", "source", sourceID, "chunks_created", created)
	return IngestResult{Success: true, ChunksCreated: created}, nil
}

// RetrieveContext embeds the query, ranks the store and keeps results at or
// above the similarity threshold. Kept texts are joined by blank lines in
// ranked order; sources are the deduplicated filenames of the kept chunks.
func (e *Engine) RetrieveContext(ctx context.Context, query string, topK int, minSimilarity float64) (string, []string, error) {
	_, embModel := e.Models()
	queryVec, err := e.embed(ctx, embModel, query)
	if err != nil {
		return "", nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results := e.store.Rank(queryVec, topK)

	var docs []string
	var sources []string
	seen := make(map[string]struct{})

	for _, res := range results {
		if res.Similarity < minSimilarity {
			continue
		}
		docs = append(docs, res.Text)

		source := res.Metadata.Filename
		if source == "" {
			source = res.Metadata.Source
		}
		if source == "" {
			source = "Unknown"
		}
		if _, ok := seen[source]; !ok {
			seen[source] = struct{}{}
			sources = append(sources, source)
		}
	}

	logger.Debug("Retrieved context", "chunks", len(docs), "sources", len(sources))
	return strings.Join(docs, "\n\n"), sources, nil
}

// Chat answers a user message, optionally grounded in retrieved context.
// Failures inside retrieval or completion never surface as errors: the
// result's answer communicates the failure and the caller decides nothing.
func (e *Engine) Chat(ctx context.Context, message string, opts ChatOptions) ChatResult {
	llmModel, _ := e.Models()
	model := opts.Model
	if model == "" {
		model = llmModel
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = e.cfg.TopKResults
	}
	minSim := opts.MinSimilarity
	if minSim <= 0 {
		minSim = e.cfg.MinSimilarity
	}

	var contextText string
	var sources []string

	if opts.UseRAG && e.store.Len() > 0 {
		var err error
		contextText, sources, err = e.RetrieveContext(ctx, message, topK, minSim)
		if err != nil {
			logger.Error("Retrieval failed", "error", err)
			return degradedResult(model, err)
		}
	}

	var messages []ai.Message
	if contextText != "" {
		messages = []ai.Message{
			{Role: "system", Content: fmt.Sprintf(ragSystemPrompt, contextText)},
			{Role: "user", Content: message},
		}
	} else {
		messages = []ai.Message{
			{Role: "system", Content: genericSystemPrompt},
			{Role: "user", Content: message},
		}
	}

	answer, err := e.complete(ctx, model, messages)
	if err != nil {
		logger.Error("Completion failed", "model", model, "error", err)
		return degradedResult(model, err)
	}

	if sources == nil {
		sources = []string{}
	}
	return ChatResult{
		Answer:      answer,
		Sources:     sources,
		ContextUsed: contextText != "",
		ModelUsed:   model,
	}
}

func degradedResult(model string, err error) ChatResult {
	return ChatResult{
		Answer:      fmt.Sprintf("Sorry, I encountered an error: %v", err),
		Sources:     []string{},
		ContextUsed: false,
		ModelUsed:   model,
	}
}

// CompressContext asks the completion model to keep only the parts of a
// retrieved context that bear on the question.
func (e *Engine) CompressContext(ctx context.Context, contextText, question string) (string, error) {
	llmModel, _ := e.Models()
	prompt := fmt.Sprintf(`You are an assistant that extracts only the most relevant information.

Context:
%s

Question:
%s

Extract ONLY the information relevant to answering the question.`, contextText, question)

	return e.complete(ctx, llmModel, []ai.Message{{Role: "user", Content: prompt}})
}

// DeleteDocument removes every chunk belonging to the named file. Multiple
// distinct sources can share a basename; all of them are deleted. Zero
// matches returns 0 and the caller decides whether that matters.
func (e *Engine) DeleteDocument(filename string) int {
	sources := e.store.SourcesByFilename(filename)
	if len(sources) == 0 {
		logger.Warn("No document found with filename", "filename", filename)
		return 0
	}

	total := 0
	for _, source := range sources {
		removed := e.store.DeleteBySource(source)
		logger.Info("Removed chunks", "source", source, "count", removed)
		total += removed
	}
	return total
}

// Stats counts chunks per document by scanning stored metadata. Nothing is
// cached, so the numbers cannot drift from the store.
func (e *Engine) Stats() Stats {
	documents := make(map[string]int)
	for _, meta := range e.store.Metadatas() {
		filename := meta.Filename
		if filename == "" {
			filename = "Unknown"
		}
		documents[filename]++
	}
	return Stats{
		TotalChunks:    e.store.Len(),
		TotalDocuments: len(documents),
		Documents:      documents,
	}
}

// Documents lists each ingested file once, with its chunk count.
func (e *Engine) Documents() []DocumentInfo {
	stats := e.Stats()
	var docs []DocumentInfo
	seen := make(map[string]struct{})

	for _, meta := range e.store.Metadatas() {
		filename := meta.Filename
		if filename == "" {
			filename = "Unknown"
		}
		if _, ok := seen[filename]; ok {
			continue
		}
		seen[filename] = struct{}{}
		docs = append(docs, DocumentInfo{
			Filename:   filename,
			Source:     meta.Source,
			Chunks:     stats.Documents[filename],
			UploadDate: meta.UploadTimestamp,
		})
	}
	return docs
}

// SaveKnowledgeBase persists the store to disk.
func (e *Engine) SaveKnowledgeBase(path string) error {
	if err := e.store.Save(path); err != nil {
		logger.Error("Failed to save knowledge base", "path", path, "error", err)
		return err
	}
	logger.Info("Saved knowledge base", "path", path, "chunks", e.store.Len())
	return nil
}

// LoadKnowledgeBase restores the store from disk; a missing file leaves the
// store untouched.
func (e *Engine) LoadKnowledgeBase(path string) error {
	if err := e.store.Load(path); err != nil {
		logger.Error("Failed to load knowledge base", "path", path, "error", err)
		return err
	}
	logger.Info("Loaded knowledge base", "path", path, "chunks", e.store.Len())
	return nil
}

// ClearKnowledgeBase drops every stored chunk.
func (e *Engine) ClearKnowledgeBase() {
	e.store.Clear()
	logger.Info("Knowledge base cleared")
}
