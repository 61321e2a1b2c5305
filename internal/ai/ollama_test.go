package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func ollamaTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Model == "" || req.Prompt == "" {
			http.Error(w, "missing model or prompt", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: []float64{0.1, 0.2, 0.3}})
	})

	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Stream {
			http.Error(w, "streaming not expected", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: Message{Role: "assistant", Content: "mock reply"},
		})
	})

	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[
			{"name":"llama3:latest","size":123,"digest":"abcdef0123456789","modified_at":"2026-01-01T00:00:00Z"},
			{"name":"nomic-embed-text","size":456,"digest":"ff00ff00ff00ff00","modified_at":"2026-01-02T00:00:00Z"}
		]}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaEmbed(t *testing.T) {
	srv := ollamaTestServer(t)
	client := NewOllamaClient(srv.URL, 5*time.Second)

	vec, err := client.Embed(context.Background(), "nomic-embed-text", "some text")
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("got %d dims, want 3", len(vec))
	}
	if vec[0] != 0.1 {
		t.Errorf("vec[0] = %v, want 0.1", vec[0])
	}
}

func TestOllamaChat(t *testing.T) {
	srv := ollamaTestServer(t)
	client := NewOllamaClient(srv.URL, 5*time.Second)

	reply, err := client.Chat(context.Background(), "llama3", []Message{
		{Role: "system", Content: "be helpful"},
		{Role: "user", Content: "hello"},
	})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if reply != "mock reply" {
		t.Errorf("reply = %q", reply)
	}
}

func TestOllamaListModels(t *testing.T) {
	srv := ollamaTestServer(t)
	client := NewOllamaClient(srv.URL, 5*time.Second)

	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels returned error: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("got %d models, want 2", len(models))
	}
	if models[0].Name != "llama3:latest" {
		t.Errorf("name = %s", models[0].Name)
	}
	if len(models[0].Digest) != 12 {
		t.Errorf("digest = %q, want 12 chars", models[0].Digest)
	}
	hasEmbedding := false
	for _, c := range models[1].Capabilities {
		if c == "embedding" {
			hasEmbedding = true
		}
	}
	if !hasEmbedding {
		t.Errorf("capabilities for embed model = %v", models[1].Capabilities)
	}
}

func TestOllamaErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	client := NewOllamaClient(srv.URL, 5*time.Second)
	if _, err := client.Embed(context.Background(), "missing", "text"); err == nil {
		t.Error("Embed against failing server returned nil error")
	}
}

func TestDetectCapabilities(t *testing.T) {
	cases := []struct {
		model string
		want  string
	}{
		{"llava:13b", "vision"},
		{"qwen2.5-coder", "coding"},
		{"nomic-embed-text", "embedding"},
		{"llama3:latest", "chat"},
	}
	for _, tc := range cases {
		caps := DetectCapabilities(tc.model)
		found := false
		for _, c := range caps {
			if c == tc.want {
				found = true
			}
		}
		if !found {
			t.Errorf("DetectCapabilities(%s) = %v, want to include %s", tc.model, caps, tc.want)
		}
	}
}
