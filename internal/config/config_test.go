package config

import (
	"path/filepath"
	"testing"
)

func setTestDirs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("UPLOAD_DIR", filepath.Join(dir, "uploads"))
	t.Setenv("STORAGE_DIR", filepath.Join(dir, "storage"))
	t.Setenv("CHATS_DIR", filepath.Join(dir, "storage", "chats"))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	setTestDirs(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Port = %s, want 8000", cfg.Port)
	}
	if cfg.Provider != "ollama" {
		t.Errorf("Provider = %s, want ollama", cfg.Provider)
	}
	if cfg.ChunkSize != 500 || cfg.ChunkOverlap != 50 {
		t.Errorf("chunking = %d/%d, want 500/50", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.TopKResults != 3 {
		t.Errorf("TopKResults = %d, want 3", cfg.TopKResults)
	}
	if cfg.MinSimilarity != 0.3 {
		t.Errorf("MinSimilarity = %v, want 0.3", cfg.MinSimilarity)
	}
	if cfg.MaxFileSizeMB != 50 {
		t.Errorf("MaxFileSizeMB = %d, want 50", cfg.MaxFileSizeMB)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setTestDirs(t)
	t.Setenv("CHUNK_SIZE", "200")
	t.Setenv("CHUNK_OVERLAP", "20")
	t.Setenv("MIN_SIMILARITY", "0.5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ChunkSize != 200 || cfg.ChunkOverlap != 20 {
		t.Errorf("chunking = %d/%d, want 200/20", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.MinSimilarity != 0.5 {
		t.Errorf("MinSimilarity = %v, want 0.5", cfg.MinSimilarity)
	}
}

func TestLoadConfigRejectsBadChunking(t *testing.T) {
	setTestDirs(t)
	t.Setenv("CHUNK_SIZE", "50")
	t.Setenv("CHUNK_OVERLAP", "50")

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig accepted overlap >= size")
	}
}

func TestLoadConfigProviderValidation(t *testing.T) {
	setTestDirs(t)

	t.Setenv("MODEL_PROVIDER", "google")
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := LoadConfig(); err == nil {
		t.Error("google provider without key should fail")
	}

	t.Setenv("GEMINI_API_KEY", "test-key")
	if _, err := LoadConfig(); err != nil {
		t.Errorf("google provider with key failed: %v", err)
	}

	t.Setenv("MODEL_PROVIDER", "unknown")
	if _, err := LoadConfig(); err == nil {
		t.Error("unknown provider should fail")
	}
}

func TestActiveModelsPerProvider(t *testing.T) {
	setTestDirs(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	llm, emb := cfg.ActiveModels()
	if llm != "ministral-3" || emb != "nomic-embed-text" {
		t.Errorf("ollama models = %s/%s", llm, emb)
	}

	t.Setenv("MODEL_PROVIDER", "google")
	t.Setenv("GEMINI_API_KEY", "test-key")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	llm, emb = cfg.ActiveModels()
	if llm != "gemini-2.0-flash" || emb != "text-embedding-004" {
		t.Errorf("google models = %s/%s, Ollama defaults must not leak", llm, emb)
	}

	t.Setenv("MODEL_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_LLM_MODEL", "gpt-4.1")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	llm, emb = cfg.ActiveModels()
	if llm != "gpt-4.1" || emb != "text-embedding-3-small" {
		t.Errorf("openai models = %s/%s", llm, emb)
	}
}

func TestExtensionAllowed(t *testing.T) {
	setTestDirs(t)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}

	for _, ext := range []string{".txt", ".pdf", ".csv", ".PY"} {
		if !cfg.ExtensionAllowed(ext) {
			t.Errorf("ExtensionAllowed(%s) = false, want true", ext)
		}
	}
	for _, ext := range []string{".exe", ".zip", ""} {
		if cfg.ExtensionAllowed(ext) {
			t.Errorf("ExtensionAllowed(%s) = true, want false", ext)
		}
	}
}

func TestMaxFileSizeBytes(t *testing.T) {
	setTestDirs(t)
	t.Setenv("MAX_FILE_SIZE_MB", "2")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.MaxFileSizeBytes(); got != 2*1024*1024 {
		t.Errorf("MaxFileSizeBytes = %d, want %d", got, 2*1024*1024)
	}
}
