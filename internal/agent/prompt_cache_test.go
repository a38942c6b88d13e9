package agent

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestPromptCache(t *testing.T) {
	tempDir := t.TempDir()

	testFile := filepath.Join(tempDir, "evaluate.tmpl")
	testContent := "Judge this story:\n{{.Story}}"
	if err := os.WriteFile(testFile, []byte(testContent), 0644); err != nil {
		t.Fatal(err)
	}

	cache := NewPromptCache()

	t.Run("loads prompt from file", func(t *testing.T) {
		content, err := cache.LoadPrompt(testFile)
		if err != nil {
			t.Fatalf("LoadPrompt() error = %v", err)
		}
		if content != testContent {
			t.Errorf("LoadPrompt() = %q, want %q", content, testContent)
		}
	})

	t.Run("caches prompt content", func(t *testing.T) {
		if err := os.WriteFile(testFile, []byte("Modified content"), 0644); err != nil {
			t.Fatal(err)
		}

		content, err := cache.LoadPrompt(testFile)
		if err != nil {
			t.Fatal(err)
		}
		if content != testContent {
			t.Errorf("LoadPrompt() = %q, want cached content %q", content, testContent)
		}
	})

	t.Run("loads and executes template", func(t *testing.T) {
		tmpl, err := cache.LoadTemplate("evaluate", testFile, nil)
		if err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}
		if tmpl.Name() != "evaluate" {
			t.Errorf("template name = %q, want %q", tmpl.Name(), "evaluate")
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, map[string]string{"Story": "Once upon a time"}); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if buf.String() != "Judge this story:\nOnce upon a time" {
			t.Errorf("Execute() = %q", buf.String())
		}
	})

	t.Run("preload multiple files", func(t *testing.T) {
		testFile2 := filepath.Join(tempDir, "refine.tmpl")
		if err := os.WriteFile(testFile2, []byte("Second prompt"), 0644); err != nil {
			t.Fatal(err)
		}

		newCache := NewPromptCache()
		if err := newCache.Preload(context.Background(), []string{testFile, testFile2}); err != nil {
			t.Fatalf("Preload() error = %v", err)
		}

		_, raw := newCache.Stats()
		if raw != 2 {
			t.Errorf("Stats() raw = %d, want 2", raw)
		}
	})

	t.Run("preload fails on missing file", func(t *testing.T) {
		newCache := NewPromptCache()
		err := newCache.Preload(context.Background(), []string{testFile, filepath.Join(tempDir, "missing.tmpl")})
		if err == nil {
			t.Error("Preload() with missing file should return error")
		}
	})

	t.Run("clear cache", func(t *testing.T) {
		cache.Clear()
		templates, raw := cache.Stats()
		if templates != 0 || raw != 0 {
			t.Errorf("Stats() after Clear() = (%d, %d), want (0, 0)", templates, raw)
		}
	})

	t.Run("handles missing file", func(t *testing.T) {
		if _, err := cache.LoadPrompt("nonexistent.txt"); err == nil {
			t.Error("LoadPrompt() with nonexistent file should return error")
		}
	})
}
