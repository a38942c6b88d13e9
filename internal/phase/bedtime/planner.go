package bedtime

import (
	"context"

	"github.com/dotcommander/bedtime/internal/agent"
	"github.com/dotcommander/bedtime/internal/domain/story"
)

// DefaultArc is the arc substituted when the planning response cannot be decoded.
func DefaultArc() map[string]any {
	return map[string]any{
		"setup":          "Introduce character.",
		"rising_action":  "Challenge appears.",
		"climax":         "Face challenge.",
		"falling_action": "Find solution.",
		"resolution":     "Happy ending.",
	}
}

// Planner expands a request into a five-part arc.
type Planner struct {
	basePhase
}

func NewPlanner(gateway *agent.Gateway, prompts *Prompts, params Params) *Planner {
	return &Planner{basePhase: newBasePhase(StagePlan, gateway, prompts, params)}
}

func (p *Planner) Plan(ctx context.Context, req story.Request) (story.Arc, error) {
	response, err := p.complete(ctx, req)
	if err != nil {
		return story.Arc{}, err
	}

	decoded := p.gateway.Decode(p.name, response, DefaultArc())
	arc, _, wholesale := decodeAs[story.Arc](decoded, DefaultArc())

	p.logger.Info("story arc planned", "defaulted", decoded.Defaulted || wholesale)
	return arc, nil
}
