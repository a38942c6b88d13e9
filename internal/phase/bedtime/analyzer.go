package bedtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/dotcommander/bedtime/internal/agent"
	"github.com/dotcommander/bedtime/internal/core"
	"github.com/dotcommander/bedtime/internal/domain/story"
)

// DefaultAnalysis is the mapping substituted when the analysis response cannot
// be decoded.
func DefaultAnalysis() map[string]any {
	return map[string]any{
		"category":   "adventure",
		"themes":     []string{"bravery"},
		"characters": []string{"hero"},
		"setting":    "unspecified",
		"tone":       "exciting",
	}
}

type analysisFields struct {
	Themes     []string `json:"themes"`
	Characters []string `json:"characters"`
	Setting    string   `json:"setting"`
	Tone       string   `json:"tone"`
}

// Analyzer turns a free-text request into a story.Request.
type Analyzer struct {
	basePhase
}

func NewAnalyzer(gateway *agent.Gateway, prompts *Prompts, params Params) *Analyzer {
	return &Analyzer{basePhase: newBasePhase(StageAnalyze, gateway, prompts, params)}
}

// Analyze classifies userInput. A category outside the fixed set is returned
// as a *core.ValueKindError and is never defaulted.
func (a *Analyzer) Analyze(ctx context.Context, userInput string) (story.Request, error) {
	if strings.TrimSpace(userInput) == "" {
		return story.Request{}, fmt.Errorf("%w: empty story request", core.ErrInvalidInput)
	}

	response, err := a.complete(ctx, story.Request{UserInput: userInput})
	if err != nil {
		return story.Request{}, err
	}

	decoded := a.gateway.Decode(a.name, response, DefaultAnalysis())
	fields, used, wholesale := decodeAs[analysisFields](decoded, DefaultAnalysis())

	// A category the model did send is never replaced by the default, even
	// when the rest of the payload falls back wholesale.
	sent := used["category"]
	if !decoded.Defaulted {
		if v, ok := decoded.Fields["category"]; ok && v != nil {
			sent = v
		}
	}
	rawCategory, ok := sent.(string)
	if !ok {
		return story.Request{}, core.NewValueKindError("category", sent, story.ErrInvalidCategory)
	}
	category, err := story.ParseCategory(rawCategory)
	if err != nil {
		return story.Request{}, core.NewValueKindError("category", rawCategory, err)
	}

	req := story.Request{
		UserInput:  userInput,
		Category:   category,
		Themes:     fields.Themes,
		Characters: fields.Characters,
		Setting:    fields.Setting,
		Tone:       fields.Tone,
	}

	a.logger.Info("request analyzed",
		"category", req.Category,
		"themes", req.Themes,
		"defaulted", decoded.Defaulted || wholesale)

	return req, nil
}
