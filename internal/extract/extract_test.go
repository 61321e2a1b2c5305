package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessTextFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.txt", "plain text content")

	got, err := Process(path)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if got != "plain text content" {
		t.Errorf("Process = %q", got)
	}
}

func TestProcessCSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data.csv", "name,age\nalice,30\nbob,25\n")

	got, err := Process(path)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	for _, want := range []string{"name\tage", "alice\t30", "bob\t25"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestProcessCSVRaggedRows(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ragged.csv", "a,b,c\nd,e\nf\n")

	if _, err := Process(path); err != nil {
		t.Errorf("ragged CSV should parse, got error: %v", err)
	}
}

func TestProcessCodeFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "script.py", "print('hello')\n")

	got, err := Process(path)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if !strings.HasPrefix(got, "File: script.py") {
		t.Errorf("code output missing header:\n%s", got)
	}
	if !strings.Contains(got, "print('hello')") {
		t.Errorf("code output missing body:\n%s", got)
	}
}

func TestProcessImagePlaceholder(t *testing.T) {
	path := writeFile(t, t.TempDir(), "photo.png", "\x89PNG fake bytes")

	got, err := Process(path)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if !strings.Contains(got, "Image File: photo.png") {
		t.Errorf("image placeholder missing filename:\n%s", got)
	}
}

func TestProcessUnsupportedType(t *testing.T) {
	path := writeFile(t, t.TempDir(), "archive.zip", "binary")

	_, err := Process(path)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("err = %v, want ErrUnsupportedType", err)
	}
}

func TestProcessMissingFile(t *testing.T) {
	if _, err := Process(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("Process of missing file returned nil error")
	}
}
