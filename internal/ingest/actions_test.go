package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCaptures(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "captures.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write captures file: %v", err)
	}
	return path
}

func TestLoadCaptures_Wrapped(t *testing.T) {
	path := writeCaptures(t, `captures:
  - url: https://example.com/a
    markdown: "# A"
  - url: https://example.com/b
    markdown: "# B"
`)

	captures, err := loadCaptures(path)
	if err != nil {
		t.Fatalf("loadCaptures() error = %v", err)
	}
	if len(captures) != 2 {
		t.Fatalf("loadCaptures() returned %d items, want 2", len(captures))
	}
	if captures[0].SourceURL != "https://example.com/a" || captures[0].Markdown != "# A" {
		t.Errorf("captures[0] = %+v", captures[0])
	}
}

func TestLoadCaptures_BareList(t *testing.T) {
	path := writeCaptures(t, `- url: https://example.com/only
  markdown: "# Only"
`)

	captures, err := loadCaptures(path)
	if err != nil {
		t.Fatalf("loadCaptures() error = %v", err)
	}
	if len(captures) != 1 || captures[0].SourceURL != "https://example.com/only" {
		t.Errorf("captures = %+v", captures)
	}
}

func TestLoadCaptures_Missing(t *testing.T) {
	if _, err := loadCaptures(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("loadCaptures() on missing file should fail")
	}
}

func TestLoadCaptures_Malformed(t *testing.T) {
	path := writeCaptures(t, "{{not yaml")
	if _, err := loadCaptures(path); err == nil {
		t.Error("loadCaptures() on malformed file should fail")
	}
}
