package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"local-llm-chatbot/internal/ai"
	"local-llm-chatbot/internal/config"
	"local-llm-chatbot/internal/rag"
	"local-llm-chatbot/models"
)

type stubClient struct{}

func (stubClient) Embed(_ context.Context, _, text string) ([]float32, error) {
	// A crude but deterministic embedding: character histogram buckets.
	vec := make([]float32, 8)
	for _, r := range text {
		vec[int(r)%8]++
	}
	return vec, nil
}

func (stubClient) Chat(_ context.Context, _ string, _ []ai.Message) (string, error) {
	return "stub answer", nil
}

func (stubClient) ListModels(_ context.Context) ([]ai.ModelInfo, error) {
	return []ai.ModelInfo{
		{Name: "test-llm", Capabilities: []string{"chat"}},
		{Name: "test-embed", Capabilities: []string{"embedding"}},
	}, nil
}

func testRouter(t *testing.T) (*gin.Engine, *rag.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := &config.Config{
		AppName:           "test-app",
		UploadDir:         filepath.Join(dir, "uploads"),
		StorageDir:        dir,
		KBFile:            "kb.gob",
		MaxFileSizeMB:     1,
		AllowedExtensions: []string{".txt", ".csv"},
		ChunkSize:         50,
		ChunkOverlap:      5,
		TopKResults:       3,
		MinSimilarity:     0.0,
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		t.Fatal(err)
	}

	client := stubClient{}
	engine := rag.NewEngine(client, rag.NewVectorStore(), rag.EngineConfig{
		LLMModel:       "test-llm",
		EmbeddingModel: "test-embed",
		ChunkSize:      cfg.ChunkSize,
		ChunkOverlap:   cfg.ChunkOverlap,
		TopKResults:    cfg.TopKResults,
		MinSimilarity:  cfg.MinSimilarity,
	})

	router := gin.New()
	SetupCoreRoutes(router, cfg, engine)
	SetupChatRoutes(router, engine)
	SetupDocumentRoutes(router, cfg, engine, nil)
	SetupKBRoutes(router, cfg, engine)
	SetupModelRoutes(router, client, engine)
	return router, engine
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp models.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Status = %s", resp.Status)
	}
	if resp.Models["llm"] != "test-llm" {
		t.Errorf("llm model = %s", resp.Models["llm"])
	}
	if resp.VectorStoreSize != 0 {
		t.Errorf("VectorStoreSize = %d, want 0", resp.VectorStoreSize)
	}
}

func TestChatEndpoint(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/chat", gin.H{"message": "hello"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp models.ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Response != "stub answer" {
		t.Errorf("Response = %q", resp.Response)
	}
	if resp.Sources == nil {
		t.Error("Sources is null in JSON response")
	}
}

func TestChatEndpointValidation(t *testing.T) {
	router, _ := testRouter(t)

	// Missing message
	if w := doJSON(t, router, http.MethodPost, "/chat", gin.H{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", w.Code)
	}

	// top_k out of range
	w := doJSON(t, router, http.MethodPost, "/chat", gin.H{"message": "hi", "top_k": 99})
	if w.Code != http.StatusBadRequest {
		t.Errorf("top_k=99 status = %d, want 400", w.Code)
	}
}

func uploadFile(t *testing.T, router *gin.Engine, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadAndListAndDelete(t *testing.T) {
	router, engine := testRouter(t)

	w := uploadFile(t, router, "notes.txt", strings.Repeat("interesting words ", 60))
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body = %s", w.Code, w.Body.String())
	}

	var up models.UploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &up); err != nil {
		t.Fatal(err)
	}
	if up.Status != "success" || up.ChunksCreated == 0 {
		t.Errorf("upload response = %+v", up)
	}
	if engine.Store().Len() == 0 {
		t.Error("store empty after upload")
	}

	w = doJSON(t, router, http.MethodGet, "/documents", nil)
	var list models.DocumentListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.TotalDocuments != 1 {
		t.Errorf("TotalDocuments = %d, want 1", list.TotalDocuments)
	}

	w = doJSON(t, router, http.MethodDelete, "/documents/delete", gin.H{"filename": "notes.txt"})
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body = %s", w.Code, w.Body.String())
	}
	if engine.Store().Len() != 0 {
		t.Errorf("store has %d chunks after delete", engine.Store().Len())
	}

	w = doJSON(t, router, http.MethodDelete, "/documents/delete", gin.H{"filename": "notes.txt"})
	if w.Code != http.StatusNotFound {
		t.Errorf("repeat delete status = %d, want 404", w.Code)
	}
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	router, _ := testRouter(t)

	w := uploadFile(t, router, "malware.exe", "binary")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestKBStatsAndPersistence(t *testing.T) {
	router, _ := testRouter(t)

	if w := uploadFile(t, router, "doc.txt", "some meaningful document text"); w.Code != http.StatusOK {
		t.Fatalf("upload status = %d", w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/kb/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d", w.Code)
	}
	var stats rag.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalChunks == 0 || stats.Documents["doc.txt"] == 0 {
		t.Errorf("stats = %+v", stats)
	}

	if w := doJSON(t, router, http.MethodPost, "/kb/save", nil); w.Code != http.StatusOK {
		t.Errorf("save status = %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodPost, "/kb/load", nil); w.Code != http.StatusOK {
		t.Errorf("load status = %d", w.Code)
	}
}

func TestModelEndpoints(t *testing.T) {
	router, engine := testRouter(t)

	w := doJSON(t, router, http.MethodGet, "/models/list", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list models.ModelListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Models) != 2 || list.CurrentLLM != "test-llm" {
		t.Errorf("list = %+v", list)
	}

	w = doJSON(t, router, http.MethodPost, "/models/switch", gin.H{"model": "nonexistent"})
	if w.Code != http.StatusNotFound {
		t.Errorf("switch to unknown status = %d, want 404", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/models/switch", gin.H{"model": "test-embed"})
	if w.Code != http.StatusOK {
		t.Errorf("switch status = %d", w.Code)
	}
	if llm, _ := engine.Models(); llm != "test-embed" {
		t.Errorf("active model = %s, want test-embed", llm)
	}
}
