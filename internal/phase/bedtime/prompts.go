package bedtime

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/dotcommander/bedtime/internal/agent"
)

// Template names. An override file in the prompts directory is named
// <name>.tmpl.
const (
	PromptAnalyze  = "analyze"
	PromptPlan     = "plan"
	PromptDraft    = "draft"
	PromptEvaluate = "evaluate"
	PromptRefine   = "refine"
	PromptRevise   = "revise"
)

var defaultPrompts = map[string]string{
	PromptAnalyze: `You are analyzing a request for a children's bedtime story (ages 5-10).

Request: "{{.UserInput}}"

Classify it into exactly one category: adventure, fantasy, educational, friendship, courage, animal.
Identify the main themes, the characters, the setting and the tone.

Respond with JSON only:
{"category": "...", "themes": ["..."], "characters": ["..."], "setting": "...", "tone": "..."}`,

	PromptPlan: `Plan the story arc for a children's bedtime story (ages 5-10).

Request: "{{.UserInput}}"
Category: {{.Category}}
Themes: {{join .Themes ", "}}
Characters: {{join .Characters ", "}}
Setting: {{.Setting}}
Tone: {{.Tone}}

Describe each of the five parts in one or two sentences.

Respond with JSON only:
{"setup": "...", "rising_action": "...", "climax": "...", "falling_action": "...", "resolution": "..."}`,

	PromptDraft: `Write a {{.Request.Category}} bedtime story for children aged 5-10.

Request: "{{.Request.UserInput}}"
Style: {{.Guidance}}

Follow this arc:
1. Setup: {{.Arc.Setup}}
2. Rising action: {{.Arc.RisingAction}}
3. Climax: {{.Arc.Climax}}
4. Falling action: {{.Arc.FallingAction}}
5. Resolution: {{.Arc.Resolution}}

Keep it between 400 and 600 words, use simple vocabulary, include some dialogue and end on a calm,
sleepy note. Return only the story text.`,

	PromptEvaluate: `You are judging a children's bedtime story (ages 5-10).

Score each criterion from 0 to 10:
- age_appropriateness: vocabulary, themes and content suit the age group
- story_structure: clear beginning, middle and end
- engagement: interesting, vivid, holds attention
- educational_value: a gentle lesson or positive message

Story:
{{.Story}}

Respond with JSON only:
{"age_appropriateness": 0, "story_structure": 0, "engagement": 0, "educational_value": 0, "overall_score": 0.0, "feedback": "specific suggestions"}`,

	PromptRefine: `Revise this bedtime story using the editor feedback.

Story:
{{.Story}}

Feedback:
{{.Feedback}}

Keep what works, fix what the feedback asks for, keep it suitable for ages 5-10.
Return only the revised story text.`,

	PromptRevise: `Update this bedtime story to honour the reader's change request.

Story:
{{.Story}}

Change request:
{{.Change}}

Keep the story suitable for ages 5-10 and keep its ending calm. Return only the updated story text.`,
}

var funcs = template.FuncMap{
	"join": strings.Join,
}

// Prompts renders the prompt for each stage.
type Prompts struct {
	templates map[string]*template.Template
}

// DefaultPrompts parses the built-in templates.
func DefaultPrompts() *Prompts {
	p := &Prompts{templates: make(map[string]*template.Template, len(defaultPrompts))}
	for name, text := range defaultPrompts {
		p.templates[name] = template.Must(template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text))
	}
	return p
}

// LoadPrompts starts from the built-in templates and replaces each one for
// which dir holds a <name>.tmpl file. An empty dir means no overrides.
func LoadPrompts(ctx context.Context, cache *agent.PromptCache, dir string) (*Prompts, error) {
	p := DefaultPrompts()
	if dir == "" {
		return p, nil
	}

	overrides := make(map[string]string)
	var paths []string
	for name := range defaultPrompts {
		path := filepath.Join(dir, name+".tmpl")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		overrides[name] = path
		paths = append(paths, path)
	}

	if err := cache.Preload(ctx, paths); err != nil {
		return nil, err
	}

	for name, path := range overrides {
		tmpl, err := cache.LoadTemplate(name, path, funcs)
		if err != nil {
			return nil, fmt.Errorf("loading prompt override: %w", err)
		}
		p.templates[name] = tmpl
	}
	return p, nil
}

// Render executes the named template with data.
func (p *Prompts) Render(name string, data any) (string, error) {
	tmpl, ok := p.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt %s: %w", name, err)
	}
	return buf.String(), nil
}
