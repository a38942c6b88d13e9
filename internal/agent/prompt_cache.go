package agent

import (
	"context"
	"fmt"
	"os"
	"sync"
	"text/template"

	"golang.org/x/sync/errgroup"
)

// PromptCache caches parsed prompt templates to avoid repeated file reads
type PromptCache struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
	raw       map[string]string
}

// NewPromptCache creates a new prompt cache
func NewPromptCache() *PromptCache {
	return &PromptCache{
		templates: make(map[string]*template.Template),
		raw:       make(map[string]string),
	}
}

// LoadPrompt loads a prompt from file or cache
func (pc *PromptCache) LoadPrompt(path string) (string, error) {
	pc.mu.RLock()
	if content, ok := pc.raw[path]; ok {
		pc.mu.RUnlock()
		return content, nil
	}
	pc.mu.RUnlock()

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading prompt file: %w", err)
	}

	pc.mu.Lock()
	pc.raw[path] = string(content)
	pc.mu.Unlock()

	return string(content), nil
}

// LoadTemplate loads and parses a template from file or cache. funcs may be nil.
func (pc *PromptCache) LoadTemplate(name, path string, funcs template.FuncMap) (*template.Template, error) {
	pc.mu.RLock()
	if tmpl, ok := pc.templates[path]; ok {
		pc.mu.RUnlock()
		return tmpl, nil
	}
	pc.mu.RUnlock()

	content, err := pc.LoadPrompt(path)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", path, err)
	}

	pc.mu.Lock()
	pc.templates[path] = tmpl
	pc.mu.Unlock()

	return tmpl, nil
}

// Preload reads all paths concurrently and fails on the first unreadable file.
func (pc *PromptCache) Preload(ctx context.Context, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := pc.LoadPrompt(path); err != nil {
				return fmt.Errorf("preloading %s: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Clear removes all cached prompts and templates
func (pc *PromptCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.templates = make(map[string]*template.Template)
	pc.raw = make(map[string]string)
}

// Stats returns cache statistics
func (pc *PromptCache) Stats() (templates int, raw int) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	return len(pc.templates), len(pc.raw)
}
