// Package bedtime implements the model-backed stages of the story pipeline.
package bedtime

import (
	"context"
	"log/slog"

	"github.com/dotcommander/bedtime/internal/agent"
	"github.com/dotcommander/bedtime/pkg/utils"
)

// Stage names, used for logging, metrics and transport errors.
const (
	StageAnalyze  = "analyze"
	StagePlan     = "plan"
	StageDraft    = "draft"
	StageEvaluate = "evaluate"
	StageRefine   = "refine"
	StageRevise   = "revise"
)

// Params are the sampling parameters of one stage.
type Params struct {
	MaxTokens   int
	Temperature float64
}

// basePhase carries what every stage needs to talk to the model.
type basePhase struct {
	name    string
	gateway *agent.Gateway
	prompts *Prompts
	params  Params
	logger  *slog.Logger
}

func newBasePhase(name string, gateway *agent.Gateway, prompts *Prompts, params Params) basePhase {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return basePhase{
		name:    name,
		gateway: gateway,
		prompts: prompts,
		params:  params,
		logger:  slog.Default().With("component", "phase", "phase", name),
	}
}

// complete renders the stage prompt and performs one generation call.
func (b basePhase) complete(ctx context.Context, data any) (string, error) {
	prompt, err := b.prompts.Render(b.name, data)
	if err != nil {
		return "", err
	}
	return b.gateway.Call(ctx, b.name, prompt, b.params.MaxTokens, b.params.Temperature)
}

// overlay returns a copy of fallback with every non-null field of fields on top.
func overlay(fields, fallback map[string]any) map[string]any {
	merged := make(map[string]any, len(fallback)+len(fields))
	for k, v := range fallback {
		merged[k] = v
	}
	for k, v := range fields {
		if v != nil {
			merged[k] = v
		}
	}
	return merged
}

// decodeAs converts a decoded response into T. Keys the model left out come
// from fallback; a response with mistyped fields is replaced by fallback as a
// whole. The mapping actually used is returned alongside the value.
func decodeAs[T any](d agent.Decoded, fallback map[string]any) (T, map[string]any, bool) {
	var out T
	if !d.Defaulted {
		merged := overlay(d.Fields, fallback)
		if err := utils.Remarshal(merged, &out); err == nil {
			return out, merged, false
		}
	}

	// default mappings are built in this package and always convert
	out = *new(T)
	_ = utils.Remarshal(fallback, &out)
	return out, fallback, true
}
