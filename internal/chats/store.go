// Package chats persists chat sessions as one JSON file per session.
package chats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"local-llm-chatbot/internal/logger"
)

// SessionMessage is one message inside a saved session.
type SessionMessage struct {
	Role        string   `json:"role"`
	Text        string   `json:"text"`
	Sources     []string `json:"sources,omitempty"`
	ContextUsed bool     `json:"context_used,omitempty"`
	Timestamp   string   `json:"timestamp"`
}

// Session is a saved conversation.
type Session struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Messages  []SessionMessage `json:"messages"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Store keeps sessions under a directory, one JSON file each.
type Store struct {
	dir string
}

// NewStore creates the session directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create chat storage dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Save writes a session to disk, assigning an id if absent.
func (s *Store) Save(session *Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	session.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}
	if err := os.WriteFile(s.path(session.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write session %s: %w", session.ID, err)
	}

	logger.Info("Saved chat session", "session_id", session.ID)
	return nil
}

// List returns all sessions, most recently updated first. Unreadable files
// are logged and skipped.
func (s *Store) List() ([]Session, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat storage dir: %w", err)
	}

	sessions := make([]Session, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			logger.Error("Failed to read chat file", "file", entry.Name(), "error", err)
			continue
		}
		var session Session
		if err := json.Unmarshal(data, &session); err != nil {
			logger.Error("Failed to parse chat file", "file", entry.Name(), "error", err)
			continue
		}
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// Load reads a single session; os.ErrNotExist when absent.
func (s *Store) Load(id string) (*Session, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, err
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", id, err)
	}
	return &session, nil
}

// Delete removes a session file; os.ErrNotExist when absent.
func (s *Store) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		return err
	}
	logger.Info("Deleted chat session", "session_id", id)
	return nil
}

// Clear removes every session and returns how many were deleted.
func (s *Store) Clear() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read chat storage dir: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return count, err
		}
		count++
	}
	logger.Info("Cleared chat sessions", "count", count)
	return count, nil
}

// Export renders a session as plain text for download.
func (s *Store) Export(id string) (content, filename string, err error) {
	session, err := s.Load(id)
	if err != nil {
		return "", "", err
	}

	title := session.Title
	if title == "" {
		title = "Untitled"
	}

	lines := []string{
		fmt.Sprintf("Chat: %s", title),
		fmt.Sprintf("Created: %s", session.CreatedAt.Format(time.RFC3339)),
		fmt.Sprintf("Messages: %d", len(session.Messages)),
		"",
		strings.Repeat("=", 50),
		"",
	}

	for _, msg := range session.Messages {
		lines = append(lines, fmt.Sprintf("%s (%s):", strings.ToUpper(msg.Role), msg.Timestamp))
		lines = append(lines, msg.Text, "")
		if len(msg.Sources) > 0 {
			lines = append(lines, fmt.Sprintf("Sources: %s", strings.Join(msg.Sources, ", ")), "")
		}
	}

	exportName := fmt.Sprintf("%s_%s.txt", title, session.ID)
	return strings.Join(lines, "\n"), exportName, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}
