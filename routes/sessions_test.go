package routes

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"local-llm-chatbot/internal/chats"
)

func sessionRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := chats.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	router := gin.New()
	SetupSessionRoutes(router, store)
	return router
}

func TestSessionLifecycle(t *testing.T) {
	router := sessionRouter(t)

	w := doJSON(t, router, http.MethodPost, "/chats/save", gin.H{
		"title": "my chat",
		"messages": []gin.H{
			{"role": "user", "text": "hello", "timestamp": "2026-08-28T10:00:00Z"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d, body = %s", w.Code, w.Body.String())
	}
	var saved struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil {
		t.Fatal(err)
	}
	if saved.SessionID == "" {
		t.Fatal("save did not return a session id")
	}

	w = doJSON(t, router, http.MethodGet, "/chats/list", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "my chat") {
		t.Errorf("list status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/chats/load/"+saved.SessionID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("load status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/chats/export/"+saved.SessionID, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Chat: my chat") {
		t.Errorf("export status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodDelete, "/chats/delete/"+saved.SessionID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/chats/load/"+saved.SessionID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("load after delete status = %d, want 404", w.Code)
	}
}

func TestSessionClear(t *testing.T) {
	router := sessionRouter(t)

	for _, title := range []string{"a", "b"} {
		if w := doJSON(t, router, http.MethodPost, "/chats/save", gin.H{"title": title}); w.Code != http.StatusOK {
			t.Fatalf("save status = %d", w.Code)
		}
	}

	w := doJSON(t, router, http.MethodPost, "/chats/clear", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear status = %d", w.Code)
	}
	var resp struct {
		Deleted int `json:"deleted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Deleted != 2 {
		t.Errorf("deleted = %d, want 2", resp.Deleted)
	}
}
